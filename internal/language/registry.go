// Package language holds the image and command specs the local docker
// backend runs code with.
package language

import (
	"fmt"
	"sort"
)

type Spec struct {
	Name       string
	Version    string
	Aliases    []string
	Image      string
	FileName   string
	CompileCmd []string
	RunCommand []string
}

var registry = map[string]Spec{}

func Register(spec Spec) {
	registry[spec.Name] = spec
}

func Resolve(name string) (Spec, error) {
	spec, ok := registry[name]
	if !ok {
		return Spec{}, fmt.Errorf("unsupported language: %s", name)
	}
	return spec, nil
}

func All() []Spec {
	specs := make([]Spec, 0, len(registry))
	for _, spec := range registry {
		specs = append(specs, spec)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs
}
