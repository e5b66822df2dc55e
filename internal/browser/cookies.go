package browser

import (
	"encoding/json"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/go-rod/rod/lib/proto"
	"github.com/playwright-community/playwright-go"
)

// Cookie struct represents a browser cookie from JSON file
// (the export format of the common cookie-editor extensions).
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite"`
}

func LoadCookies(path string) ([]Cookie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read cookies %s", path)
	}

	var cookies []Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, errors.Wrapf(err, "parse cookies %s", path)
	}
	return cookies, nil
}

func (c Cookie) ToPlayWright() playwright.OptionalCookie {
	path := c.Path
	if path == "" {
		path = "/"
	}
	pwCookie := playwright.OptionalCookie{
		Name:   c.Name,
		Value:  c.Value,
		Domain: playwright.String(c.Domain),
		Path:   playwright.String(path),
	}

	if c.Expires > 0 {
		pwCookie.Expires = playwright.Float(c.Expires)
	}

	if c.HTTPOnly {
		pwCookie.HttpOnly = playwright.Bool(true)
	}

	if c.Secure {
		pwCookie.Secure = playwright.Bool(true)
	}

	switch c.SameSite {
	case "Lax", "lax":
		pwCookie.SameSite = playwright.SameSiteAttributeLax
	case "Strict", "strict":
		pwCookie.SameSite = playwright.SameSiteAttributeStrict
	case "None", "no_restriction":
		pwCookie.SameSite = playwright.SameSiteAttributeNone
	}

	return pwCookie
}

func (c Cookie) ToRod() *proto.NetworkCookieParam {
	param := &proto.NetworkCookieParam{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		HTTPOnly: c.HTTPOnly,
		Secure:   c.Secure,
	}
	if param.Path == "" {
		param.Path = "/"
	}
	if c.Expires > 0 {
		param.Expires = proto.TimeSinceEpoch(c.Expires)
	}

	switch c.SameSite {
	case "Lax", "lax":
		param.SameSite = proto.NetworkCookieSameSiteLax
	case "Strict", "strict":
		param.SameSite = proto.NetworkCookieSameSiteStrict
	case "None", "no_restriction":
		param.SameSite = proto.NetworkCookieSameSiteNone
	}
	return param
}
