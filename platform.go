package osformula

import (
	"fmt"
	"strings"
)

// Family groups platforms sharing a package manager and repository layout.
type Family string

const (
	FamilyDebian Family = "debian"
	FamilyRedHat Family = "redhat"
)

// Platform is an operating system a scenario is checked against.
type Platform struct {
	Name   string
	Family Family
}

var (
	Debian = Platform{Name: "debian-8-x86_64", Family: FamilyDebian}
	RedHat = Platform{Name: "centos-7-x86_64", Family: FamilyRedHat}
)

func (p Platform) String() string {
	return p.Name
}

// SupportedPlatforms returns every platform the formula supports.
func SupportedPlatforms() []Platform {
	return []Platform{Debian, RedHat}
}

// ParsePlatform resolves a platform by name or by family.
func ParsePlatform(s string) (Platform, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, p := range SupportedPlatforms() {
		if s == p.Name || s == string(p.Family) {
			return p, nil
		}
	}
	return Platform{}, fmt.Errorf("unsupported platform %q", s)
}

// ParsePlatforms resolves every name in names. No names means every
// supported platform.
func ParsePlatforms(names []string) ([]Platform, error) {
	if len(names) == 0 {
		return SupportedPlatforms(), nil
	}
	platforms := make([]Platform, 0, len(names))
	for _, name := range names {
		p, err := ParsePlatform(name)
		if err != nil {
			return nil, err
		}
		platforms = append(platforms, p)
	}
	return platforms, nil
}
