package agent

import (
	"context"
	"slices"
)

// Request is one dispatch: an objective plus the tags that select which
// agents contribute a packet.
type Request struct {
	Objective string   `json:"objective"`
	Tags      []string `json:"tags"`
}

// Packet is one agent's contribution to a response.
type Packet struct {
	Name              string         `json:"name"`
	ExecutiveTakeaway string         `json:"executive_takeaway"`
	Findings          map[string]any `json:"findings,omitempty"`
	Footnotes         []string       `json:"footnotes,omitempty"`
}

// Agent maps a set of tags to a packet of (mostly canned) findings.
type Agent interface {
	Name() string
	Handles() []string
	Run(ctx context.Context, req Request) (Packet, error)
}

// Registry is the agent lookup table. It is fully constructed at startup
// and read-only afterwards; handlers receive it by reference rather than
// through package-level state.
type Registry struct {
	agents []Agent
}

func NewRegistry(agents ...Agent) *Registry {
	return &Registry{agents: slices.Clone(agents)}
}

// Pick returns every registered agent that handles at least one of the
// requested tags, in registration order.
func (r *Registry) Pick(tags []string) []Agent {
	var picked []Agent
	for _, a := range r.agents {
		for _, h := range a.Handles() {
			if slices.Contains(tags, h) {
				picked = append(picked, a)
				break
			}
		}
	}
	return picked
}

// Info describes a registered agent for listings.
type Info struct {
	Name    string   `json:"name"`
	Handles []string `json:"handles"`
}

func (r *Registry) List() []Info {
	infos := make([]Info, 0, len(r.agents))
	for _, a := range r.agents {
		infos = append(infos, Info{Name: a.Name(), Handles: a.Handles()})
	}
	return infos
}
