package models

import "strings"

// UserProfile is the singleton user record. Updated wholesale; the
// onboarding flag lives beside it with an independent lifecycle.
type UserProfile struct {
	FirstName string `json:"firstName"`
	Surname   string `json:"surname"`
	Country   string `json:"country"`
}

// FullName joins the non-empty name parts
func (p UserProfile) FullName() string {
	names := make([]string, 0, 2)
	for _, n := range []string{p.FirstName, p.Surname} {
		if n != "" {
			names = append(names, n)
		}
	}
	return strings.Join(names, " ")
}

// Incomplete reports whether required fields are missing
func (p UserProfile) Incomplete() bool {
	return strings.TrimSpace(p.FirstName) == ""
}

// Greeting returns a display-friendly greeting
func (p UserProfile) Greeting() string {
	if p.FirstName == "" {
		return "Welcome"
	}
	return "Hello, " + p.FirstName
}
