package glassdoor

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Selectors maps each page role to a CSS selector. Card sub-selectors
// (title, company, location, detail trigger) are resolved inside a card;
// the rest against the whole document.
type Selectors struct {
	Modal         string `yaml:"modal"`
	CloseTrigger  string `yaml:"close_trigger"`
	LoadMore      string `yaml:"load_more"`
	JobCard       string `yaml:"job_card"`
	DetailTrigger string `yaml:"detail_trigger"`
	Title         string `yaml:"title"`
	Company       string `yaml:"company"`
	Location      string `yaml:"location"`
	Description   string `yaml:"description"`
	ShowMore      string `yaml:"show_more"`

	LoggedIn       string `yaml:"logged_in"`
	SearchTitle    string `yaml:"search_title"`
	SearchLocation string `yaml:"search_location"`
	AcceptCookies  string `yaml:"accept_cookies"`
}

// DefaultSelectors returns the selectors for the current Glassdoor UK layout.
func DefaultSelectors() Selectors {
	return Selectors{
		Modal:         ".modal_ModalContainer__GGVJc",
		CloseTrigger:  `button, [aria-label="close"]`,
		LoadMore:      `[data-test="load-more"]`,
		JobCard:       ".jobCard",
		DetailTrigger: `[class*="trackingLink"]`,
		Title:         `[class*="jobTitle"]`,
		Company:       `[class*="EmployerProfile"]`,
		Location:      `[class*="JobCard_location"]`,
		Description:   `[class*="jobDescription"]`,
		ShowMore:      `[data-test="show-more-cta"]`,

		LoggedIn:       `[aria-label="profile"]`,
		SearchTitle:    `[aria-labelledby="searchBar-jobTitle_label"]`,
		SearchLocation: `[aria-labelledby="searchBar-location_label"]`,
		AcceptCookies:  `button:has-text("Accept")`,
	}
}

// Override returns a copy of s with the roles named in overrides replaced.
// Keys are the yaml role names; an unknown key is an error.
func (s Selectors) Override(overrides map[string]string) (Selectors, error) {
	if len(overrides) == 0 {
		return s, nil
	}
	raw, err := yaml.Marshal(overrides)
	if err != nil {
		return s, errors.Wrap(err, "encode selector overrides")
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	out := s
	if err := dec.Decode(&out); err != nil {
		return s, errors.WithHint(errors.Wrap(err, "invalid selector override"),
			"valid roles: modal, close_trigger, load_more, job_card, detail_trigger, title, company, location, description, show_more, logged_in, search_title, search_location, accept_cookies")
	}
	return out, nil
}

// Validate checks that every required role is set. CloseTrigger is optional.
func (s Selectors) Validate() error {
	required := map[string]string{
		"modal":          s.Modal,
		"load_more":      s.LoadMore,
		"job_card":       s.JobCard,
		"detail_trigger": s.DetailTrigger,
		"title":          s.Title,
		"company":        s.Company,
		"location":       s.Location,
		"description":    s.Description,
		"show_more":      s.ShowMore,
	}
	for role, sel := range required {
		if sel == "" {
			return errors.Newf("selector for role %q is empty", role)
		}
	}
	return nil
}
