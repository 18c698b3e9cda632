package catalog

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// listResponse is the envelope of the titles list endpoint
type listResponse struct {
	Count    int        `json:"count"`
	Next     *string    `json:"next"`
	Previous *string    `json:"previous"`
	Results  []titleDTO `json:"results"`
}

// titleDTO is a movie as it appears in list results
type titleDTO struct {
	ID        flexString `json:"id"`
	URL       string     `json:"url"`
	IMDbURL   string     `json:"imdb_url"`
	Title     string     `json:"title"`
	Year      flexInt    `json:"year"`
	IMDbScore flexFloat  `json:"imdb_score"`
	Votes     flexInt    `json:"votes"`
	ImageURL  string     `json:"image_url"`
	Directors []string   `json:"directors"`
	Actors    []string   `json:"actors"`
	Writers   []string   `json:"writers"`
	Genres    []string   `json:"genres"`
}

// detailDTO is the full record of the titles detail endpoint
type detailDTO struct {
	titleDTO

	OriginalTitle   string     `json:"original_title"`
	DatePublished   string     `json:"date_published"`
	Duration        flexInt    `json:"duration"`
	Description     string     `json:"description"`
	LongDescription string     `json:"long_description"`
	Countries       []string   `json:"countries"`
	Languages       []string   `json:"languages"`
	Rated           flexString `json:"rated"`
	Company         string     `json:"company"`
	Budget          flexInt    `json:"budget"`
	BudgetCurrency  string     `json:"budget_currency"`
}

// genreListResponse is the envelope of the genres endpoint
type genreListResponse struct {
	Count   int        `json:"count"`
	Next    *string    `json:"next"`
	Results []genreDTO `json:"results"`
}

type genreDTO struct {
	ID   flexString `json:"id"`
	Name string     `json:"name"`
}

// flexString accepts a JSON string or number
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	*s = flexString(data)
	return nil
}

// flexFloat accepts a JSON number or a numeric string ("7.9").
// Unparseable strings decode as 0.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(s)), 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}

// flexInt accepts a JSON number or a numeric string. Unparseable
// strings decode as 0.
type flexInt int64

func (i *flexInt) UnmarshalJSON(data []byte) error {
	var f flexFloat
	if err := f.UnmarshalJSON(data); err != nil {
		return err
	}
	*i = flexInt(f)
	return nil
}
