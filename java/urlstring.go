package java

import (
	"encoding/json"
	"net/url"
	"strings"
)

// URLString is a URL that marshals to JSON as a plain string. It records
// where a type's metadata came from.
type URLString struct {
	url.URL
}

func NewURLString(u *url.URL) URLString {
	if u == nil {
		return URLString{}
	}
	return URLString{URL: *u}
}

func FileURL(path string) URLString {
	return URLString{
		URL: url.URL{
			Scheme: "file",
			Path:   path,
		},
	}
}

// JarURL names an entry of a jar file the way the JDK does:
// jar:file:/path/lib.jar!/pkg/Type.class.
func JarURL(jar, entry string) URLString {
	file := url.URL{Scheme: "file", Path: jar}
	return URLString{
		URL: url.URL{
			Scheme: "jar",
			Opaque: file.String() + "!/" + entry,
		},
	}
}

func (u URLString) IsZero() bool {
	return u.URL.Scheme == "" && u.URL.Host == "" && u.URL.Path == "" && u.URL.Opaque == ""
}

// FilePath returns the local file behind the URL: the file itself for file
// URLs, the jar for jar URLs.
func (u URLString) FilePath() string {
	switch u.Scheme {
	case "file":
		return u.URL.Path
	case "jar":
		inner, _, _ := strings.Cut(u.Opaque, "!/")
		if parsed, err := url.Parse(inner); err == nil && parsed.Scheme == "file" {
			return parsed.Path
		}
	}
	return ""
}

func (u URLString) MarshalJSON() ([]byte, error) {
	if u.IsZero() {
		return json.Marshal(nil)
	}
	return json.Marshal(u.URL.String())
}

func (u *URLString) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		*u = URLString{}
		return nil
	}
	parsed, err := url.Parse(*s)
	if err != nil {
		return err
	}
	u.URL = *parsed
	return nil
}
