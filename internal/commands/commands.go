package commands

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// CommandKind identifies what the operator asked for.
type CommandKind string

const (
	KindList       CommandKind = "list"
	KindStatus     CommandKind = "status"
	KindApprove    CommandKind = "approve"
	KindReject     CommandKind = "reject"
	KindApproveAll CommandKind = "approve_all"
	KindRejectAll  CommandKind = "reject_all"
	KindView       CommandKind = "view"
)

// Command is the parsed form of an inbound WhatsApp message.
type Command struct {
	Kind CommandKind
	ID   int64
}

const usageHint = `Reply "list", "status", "yes <id>", "no <id>", "yes all", "no all", or a post ID to preview it.`

var postIDPattern = regexp.MustCompile(`^[1-9][0-9]*$`)

// Parse turns raw message text into a Command. It is case-insensitive and
// tolerant of extra whitespace. The returned error text is sent back to the
// operator verbatim, so it names the offending token and suggests valid input.
func Parse(raw string) (Command, error) {
	text := strings.ToLower(strings.TrimSpace(raw))
	if text == "" {
		return Command{}, fmt.Errorf("I didn't catch that, the message was empty. %s", usageHint)
	}

	tokens := strings.Fields(text)

	switch tokens[0] {
	case "list":
		if len(tokens) > 1 {
			return Command{}, fmt.Errorf(`"list" takes no arguments (got %q). %s`, tokens[1], usageHint)
		}
		return Command{Kind: KindList}, nil

	case "status":
		if len(tokens) > 1 {
			return Command{}, fmt.Errorf(`"status" takes no arguments (got %q). %s`, tokens[1], usageHint)
		}
		return Command{Kind: KindStatus}, nil

	case "yes", "no":
		kind, allKind := KindApprove, KindApproveAll
		if tokens[0] == "no" {
			kind, allKind = KindReject, KindRejectAll
		}
		if len(tokens) < 2 {
			return Command{}, fmt.Errorf(`%q needs a target: "%s <id>" or "%s all". %s`, tokens[0], tokens[0], tokens[0], usageHint)
		}
		if len(tokens) > 2 {
			return Command{}, fmt.Errorf(`too many arguments for %q (got %q). %s`, tokens[0], strings.Join(tokens[1:], " "), usageHint)
		}
		if tokens[1] == "all" {
			return Command{Kind: allKind}, nil
		}
		id, err := parsePostID(tokens[1])
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: kind, ID: id}, nil
	}

	// Bare post ID previews a single post.
	if len(tokens) == 1 {
		if id, err := parsePostID(tokens[0]); err == nil {
			return Command{Kind: KindView, ID: id}, nil
		}
	}

	return Command{}, fmt.Errorf("unknown command %q. %s", tokens[0], usageHint)
}

func parsePostID(token string) (int64, error) {
	if !postIDPattern.MatchString(token) {
		return 0, fmt.Errorf("%q is not a valid post ID. It must be a positive whole number like 12. %s", token, usageHint)
	}
	id, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a valid post ID. It must be a positive whole number like 12. %s", token, usageHint)
	}
	return id, nil
}
