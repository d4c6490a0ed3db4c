package characters

import (
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
)

// Status filters characters by vital status. StatusAll means "no filter".
type Status string

const (
	StatusAll     Status = "all"
	StatusAlive   Status = "alive"
	StatusDead    Status = "dead"
	StatusUnknown Status = "unknown"
)

// Statuses lists the selectable status filters in display order.
func Statuses() []Status {
	return []Status{StatusAll, StatusAlive, StatusDead, StatusUnknown}
}

// ParseStatus is case-insensitive; unrecognized input yields StatusAll.
func ParseStatus(s string) Status {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusAlive, StatusDead, StatusUnknown:
		return st
	default:
		return StatusAll
	}
}

// Gender filters characters by gender. GenderAll means "no filter".
type Gender string

const (
	GenderAll        Gender = "all"
	GenderFemale     Gender = "female"
	GenderMale       Gender = "male"
	GenderGenderless Gender = "genderless"
	GenderUnknown    Gender = "unknown"
)

// Genders lists the selectable gender filters in display order.
func Genders() []Gender {
	return []Gender{GenderAll, GenderFemale, GenderMale, GenderGenderless, GenderUnknown}
}

// ParseGender is case-insensitive; unrecognized input yields GenderAll.
func ParseGender(s string) Gender {
	switch g := Gender(strings.ToLower(strings.TrimSpace(s))); g {
	case GenderFemale, GenderMale, GenderGenderless, GenderUnknown:
		return g
	default:
		return GenderAll
	}
}

// Ref is a named link to another API resource.
type Ref struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Character is a read-only record from the upstream API.
// Status and Gender keep the upstream casing ("Alive", "Female", "unknown").
type Character struct {
	Created  time.Time `json:"created"`
	Origin   Ref       `json:"origin"`
	Location Ref       `json:"location"`
	Name     string    `json:"name"`
	Status   string    `json:"status"`
	Species  string    `json:"species"`
	Type     string    `json:"type"`
	Gender   string    `json:"gender"`
	Image    string    `json:"image"`
	URL      string    `json:"url"`
	Episode  []string  `json:"episode"`
	ID       int       `json:"id"`
}

// FirstEpisode returns the episode label of the earliest appearance, or "".
func (c Character) FirstEpisode() string {
	if len(c.Episode) == 0 {
		return ""
	}
	return EpisodeLabel(c.Episode[0])
}

// LastEpisode returns the episode label of the latest appearance, or "".
func (c Character) LastEpisode() string {
	if len(c.Episode) == 0 {
		return ""
	}
	return EpisodeLabel(c.Episode[len(c.Episode)-1])
}

// EpisodeLabel turns ".../episode/28" into "EP28".
func EpisodeLabel(episodeURL string) string {
	u, err := url.Parse(episodeURL)
	if err != nil {
		return "Unknown"
	}
	n, err := strconv.Atoi(path.Base(u.Path))
	if err != nil || path.Base(path.Dir(u.Path)) != "episode" {
		return "Unknown"
	}
	return "EP" + strconv.Itoa(n)
}

// Info is the pagination envelope of a list response.
type Info struct {
	Next  *string `json:"next"`
	Prev  *string `json:"prev"`
	Count int     `json:"count"`
	Pages int     `json:"pages"`
}

// Page is one page of list results.
type Page struct {
	Results []Character `json:"results"`
	Info    Info        `json:"info"`
}

// ListParams are the filters and page of a list request.
type ListParams struct {
	Status Status
	Gender Gender
	Name   string
	Page   int
}

// Values encodes the params as an upstream query string.
// "all" and empty fields are omitted, as is a page below 1.
func (p ListParams) Values() url.Values {
	v := url.Values{}
	if p.Status != "" && p.Status != StatusAll {
		v.Set("status", string(p.Status))
	}
	if p.Gender != "" && p.Gender != GenderAll {
		v.Set("gender", string(p.Gender))
	}
	if name := strings.TrimSpace(p.Name); name != "" {
		v.Set("name", name)
	}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	return v
}
