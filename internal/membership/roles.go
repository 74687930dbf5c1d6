package membership

import "fmt"

type Role string

const (
	RoleOwner     Role = "owner"
	RoleOrganizer Role = "organizer"
	RolePlayer    Role = "player"
)

// ParseRole rejects anything outside the closed role set.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleOwner, RoleOrganizer, RolePlayer:
		return Role(raw), nil
	default:
		return "", fmt.Errorf("unknown membership role %q", raw)
	}
}

// CanManageLeague reports whether the role may edit league settings.
func (r Role) CanManageLeague() bool {
	switch r {
	case RoleOwner, RoleOrganizer:
		return true
	case RolePlayer:
		return false
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusActive, StatusInactive:
		return Status(raw), nil
	default:
		return "", fmt.Errorf("unknown membership status %q", raw)
	}
}

type LeagueStatus string

const (
	LeagueActive   LeagueStatus = "active"
	LeagueArchived LeagueStatus = "archived"
)

func ParseLeagueStatus(raw string) (LeagueStatus, error) {
	switch LeagueStatus(raw) {
	case LeagueActive, LeagueArchived:
		return LeagueStatus(raw), nil
	default:
		return "", fmt.Errorf("unknown league status %q", raw)
	}
}
