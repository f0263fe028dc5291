package credentials

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-ini/ini"
)

// SharedCredentialsFile returns the shared credentials file path:
// AWS_SHARED_CREDENTIALS_FILE, else ~/.aws/credentials.
func SharedCredentialsFile() string {
	return sharedFile("AWS_SHARED_CREDENTIALS_FILE", "credentials")
}

// SharedConfigFile returns the shared config file path: AWS_CONFIG_FILE,
// else ~/.aws/config.
func SharedConfigFile() string {
	return sharedFile("AWS_CONFIG_FILE", "config")
}

func sharedFile(env, name string) string {
	if path := os.Getenv(env); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".aws", name)
}

// Profiles lists the profiles named in the shared credentials and config
// files, sorted, with "default" always present. Missing files are not an
// error.
func Profiles() ([]string, error) {
	seen := map[string]bool{"default": true}

	creds, err := sections(SharedCredentialsFile())
	if err != nil {
		return nil, err
	}
	for _, name := range creds {
		seen[name] = true
	}

	conf, err := sections(SharedConfigFile())
	if err != nil {
		return nil, err
	}
	for _, name := range conf {
		// The config file prefixes every profile but default with
		// "profile "; sso-session and services sections are not profiles.
		switch {
		case name == "default":
		case strings.HasPrefix(name, "profile "):
			name = strings.TrimSpace(strings.TrimPrefix(name, "profile "))
		default:
			continue
		}
		if name != "" {
			seen[name] = true
		}
	}

	profiles := make([]string, 0, len(seen))
	for name := range seen {
		profiles = append(profiles, name)
	}
	slices.Sort(profiles)
	return profiles, nil
}

// sections returns the section names of an ini file in file order.
func sections(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	f, err := ini.LoadSources(ini.LoadOptions{
		Loose:                   true,
		SkipUnrecognizableLines: true,
		AllowNestedValues:       true,
	}, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, s := range f.Sections() {
		if s.Name() == ini.DefaultSection {
			continue
		}
		names = append(names, strings.TrimSpace(s.Name()))
	}
	return names, nil
}

// ProfileRegion returns the region configured for profile in the shared
// config file, or "" if none.
func ProfileRegion(profile string) (string, error) {
	path := SharedConfigFile()
	if path == "" {
		return "", nil
	}
	f, err := ini.LoadSources(ini.LoadOptions{Loose: true, SkipUnrecognizableLines: true, AllowNestedValues: true}, path)
	if err != nil {
		return "", err
	}

	section := "profile " + profile
	if profile == "" || profile == "default" {
		section = "default"
	}
	if !f.HasSection(section) {
		return "", nil
	}
	return f.Section(section).Key("region").String(), nil
}
