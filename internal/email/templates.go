package email

import (
	"fmt"
	"strings"
)

// Message is a plain-text email.
type Message struct {
	Subject string
	Body    string
}

type JoinNoticeDetails struct {
	LeagueName    string
	MemberName    string
	Rejoined      bool
	ActiveMembers int64
	MaxPlayers    *int64
}

type ArchiveNoticeDetails struct {
	LeagueName string
}

// BuildJoinNotice tells a league owner that someone joined.
func BuildJoinNotice(details JoinNoticeDetails) Message {
	leagueName := strings.TrimSpace(details.LeagueName)
	if leagueName == "" {
		leagueName = "your league"
	}
	memberName := strings.TrimSpace(details.MemberName)
	if memberName == "" {
		memberName = "A player"
	}

	verb := "joined"
	if details.Rejoined {
		verb = "rejoined"
	}

	roster := fmt.Sprintf("%d", details.ActiveMembers)
	if details.MaxPlayers != nil {
		roster = fmt.Sprintf("%d of %d", details.ActiveMembers, *details.MaxPlayers)
	}

	lines := []string{
		fmt.Sprintf("%s %s %s.", memberName, verb, leagueName),
		"",
		fmt.Sprintf("Active members: %s", roster),
	}

	return Message{
		Subject: fmt.Sprintf("New member in %s", leagueName),
		Body:    strings.Join(lines, "\n"),
	}
}

// BuildArchiveNotice confirms that a league was archived when its last
// member, the owner, left.
func BuildArchiveNotice(details ArchiveNoticeDetails) Message {
	leagueName := strings.TrimSpace(details.LeagueName)
	if leagueName == "" {
		leagueName = "Your league"
	}

	lines := []string{
		fmt.Sprintf("%s has been archived.", leagueName),
		"",
		"You were the last active member, so the league no longer accepts new members.",
		"Match history and standings remain available.",
	}

	return Message{
		Subject: fmt.Sprintf("%s archived", leagueName),
		Body:    strings.Join(lines, "\n"),
	}
}
