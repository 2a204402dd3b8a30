package core

import (
	"context"
	"strings"

	"github.com/keshon/mahiro/internal/media"
	"github.com/keshon/mahiro/internal/mind"
)

// Command is a text command such as "/mood". Run returns the reply to show.
type Command interface {
	Name() string
	Description() string
	Usage() string
	Aliases() []string
	Category() string
	RequireAdmin() bool
	Run(ctx *Context, args []string) (string, error)
}

// Context is what a host hands a command.
type Context struct {
	context.Context
	Engine   *mind.Engine
	Images   *media.Images // may be nil
	Registry *Registry
	UserID   string
	Admin    bool
}

// Parse splits "/name arg..." or "!name arg...". ok is false for plain text.
func Parse(text string) (name string, args []string, ok bool) {
	text = strings.TrimSpace(text)
	if len(text) < 2 || (text[0] != '/' && text[0] != '!') {
		return "", nil, false
	}
	fields := strings.Fields(text[1:])
	if len(fields) == 0 {
		return "", nil, false
	}
	name = strings.ToLower(fields[0])
	// "/mood@mahiro" style suffixes
	if i := strings.IndexByte(name, '@'); i > 0 {
		name = name[:i]
	}
	return name, fields[1:], true
}
