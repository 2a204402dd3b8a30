package core

import (
	"errors"
	"sort"
	"sync"
)

var ErrUnknownCommand = errors.New("unknown command")

// Registry maps names and aliases to commands.
type Registry struct {
	mu   sync.RWMutex
	cmds map[string]Command
}

func NewRegistry() *Registry {
	return &Registry{cmds: make(map[string]Command)}
}

// Register adds cmd under its name and aliases.
func (r *Registry) Register(cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmds[cmd.Name()] = cmd
	for _, a := range cmd.Aliases() {
		r.cmds[a] = cmd
	}
}

// Get returns the command with the given name or alias.
func (r *Registry) Get(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.cmds[name]
	return cmd, ok
}

// All returns every command once, sorted by category then name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[string]bool{}
	list := make([]Command, 0, len(r.cmds))
	for _, cmd := range r.cmds {
		if seen[cmd.Name()] {
			continue
		}
		seen[cmd.Name()] = true
		list = append(list, cmd)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Category() != list[j].Category() {
			return list[i].Category() < list[j].Category()
		}
		return list[i].Name() < list[j].Name()
	})
	return list
}

// Dispatch parses text and runs the matching command. handled is false when
// text is not a command at all.
func (r *Registry) Dispatch(ctx *Context, text string) (reply string, handled bool, err error) {
	name, args, ok := Parse(text)
	if !ok {
		return "", false, nil
	}
	cmd, found := r.Get(name)
	if !found {
		return "", true, ErrUnknownCommand
	}
	if ctx.Registry == nil {
		ctx.Registry = r
	}
	reply, err = cmd.Run(ctx, args)
	return reply, true, err
}
