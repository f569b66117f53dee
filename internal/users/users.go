// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package users resolves @handle and @team/name references against a
// YAML user directory. Teams may contain teams; membership resolution
// tolerates cycles.
package users

import (
	"fmt"
	"sort"
	"strings"

	yaml "go.yaml.in/yaml/v3"
)

// User is one person in the directory. Extra carries attributes the
// directory does not interpret.
type User struct {
	Handle string
	Name   string
	Email  string
	Teams  []string
	Extra  map[string]string
}

// Team is a named group. Teams lists contained sub-teams.
type Team struct {
	Handle string
	Name   string
	Teams  []string
	Extra  map[string]string
}

// Directory is the compiled user/team directory.
type Directory struct {
	users     map[string]*User
	teams     map[string]*Team
	userOrder []string
	teamOrder []string
}

type rawEntry struct {
	Name  string   `yaml:"name"`
	Email string   `yaml:"email"`
	Teams []string `yaml:"teams"`

	Extra map[string]string `yaml:",inline"`
}

type rawDirectory struct {
	Users map[string]rawEntry `yaml:"users"`
	Teams map[string]rawEntry `yaml:"teams"`
}

// Compile builds a Directory from YAML config. Cyclic or self-referential
// team membership is not an error; it is tolerated at query time.
func Compile(src []byte) (*Directory, error) {
	var raw rawDirectory
	if err := yaml.Unmarshal(src, &raw); err != nil {
		return nil, fmt.Errorf("decode user directory: %w", err)
	}

	dir := &Directory{
		users: make(map[string]*User, len(raw.Users)),
		teams: make(map[string]*Team, len(raw.Teams)),
	}
	for handle, e := range raw.Users {
		dir.users[handle] = &User{
			Handle: handle,
			Name:   e.Name,
			Email:  e.Email,
			Teams:  e.Teams,
			Extra:  e.Extra,
		}
	}
	for handle, e := range raw.Teams {
		dir.teams[handle] = &Team{
			Handle: handle,
			Name:   e.Name,
			Teams:  e.Teams,
			Extra:  e.Extra,
		}
	}
	for h := range dir.users {
		dir.userOrder = append(dir.userOrder, h)
	}
	for h := range dir.teams {
		dir.teamOrder = append(dir.teamOrder, h)
	}
	sort.Strings(dir.userOrder)
	sort.Strings(dir.teamOrder)
	return dir, nil
}

// ParseHandle splits a reference into (name, isTeam). A user reference
// is "@name"; a team reference is "@team/name". Returns ok=false for
// anything else.
func ParseHandle(ref string) (name string, isTeam, ok bool) {
	if !strings.HasPrefix(ref, "@") || len(ref) == 1 {
		return "", false, false
	}
	rest := ref[1:]
	if strings.HasPrefix(rest, "team/") {
		name = rest[len("team/"):]
		if name == "" || strings.Contains(name, "/") {
			return "", false, false
		}
		return name, true, true
	}
	if strings.Contains(rest, "/") {
		return "", false, false
	}
	return rest, false, true
}

// ResolveHandle resolves a "@name" user reference.
func (d *Directory) ResolveHandle(ref string) (*User, bool) {
	name, isTeam, ok := ParseHandle(ref)
	if !ok || isTeam {
		return nil, false
	}
	u, ok := d.users[name]
	return u, ok
}

// ResolveTeam resolves a "@team/name" reference.
func (d *Directory) ResolveTeam(ref string) (*Team, bool) {
	name, isTeam, ok := ParseHandle(ref)
	if !ok || !isTeam {
		return nil, false
	}
	t, ok := d.teams[name]
	return t, ok
}

// Valid reports whether ref is a well-formed reference naming a known
// user or team.
func (d *Directory) Valid(ref string) bool {
	name, isTeam, ok := ParseHandle(ref)
	if !ok {
		return false
	}
	if isTeam {
		_, ok = d.teams[name]
	} else {
		_, ok = d.users[name]
	}
	return ok
}

// IsMember reports whether the user belongs to the team, directly or
// through contained teams. Cyclic team graphs terminate.
func (d *Directory) IsMember(userHandle, teamHandle string) bool {
	u, ok := d.users[userHandle]
	if !ok {
		return false
	}
	if _, ok := d.teams[teamHandle]; !ok {
		return false
	}
	seen := make(map[string]bool)
	queue := []string{teamHandle}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		for _, t := range u.Teams {
			if t == cur {
				return true
			}
		}
		if team, ok := d.teams[cur]; ok {
			queue = append(queue, team.Teams...)
		}
	}
	return false
}

// Members returns the handles of all users transitively belonging to
// the team, sorted.
func (d *Directory) Members(teamHandle string) []string {
	if _, ok := d.teams[teamHandle]; !ok {
		return nil
	}
	var out []string
	for _, h := range d.userOrder {
		if d.IsMember(h, teamHandle) {
			out = append(out, h)
		}
	}
	return out
}

// Handles returns all user handles, sorted.
func (d *Directory) Handles() []string {
	out := make([]string, len(d.userOrder))
	copy(out, d.userOrder)
	return out
}

// TeamHandles returns all team handles, sorted.
func (d *Directory) TeamHandles() []string {
	out := make([]string, len(d.teamOrder))
	copy(out, d.teamOrder)
	return out
}
