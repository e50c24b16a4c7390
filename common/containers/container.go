// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package containers implements CEL's namespace resolution: a container
// scopes unqualified and partially-qualified identifiers the way C++
// namespaces do, searching outward from the most specific candidate name
// to the root (spec §4.C "Container / namespace resolution").
package containers

import "strings"

// Container holds the current namespace and any type-name aliases
// established for it.
type Container struct {
	name    string
	aliases map[string]string
}

// ContainerOption configures a Container at construction time.
type ContainerOption func(*Container) error

// NewContainer builds a Container, applying opts in order.
func NewContainer(opts ...ContainerOption) (*Container, error) {
	c := &Container{aliases: make(map[string]string)}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Name is the container's fully qualified namespace, e.g. "a.b.c".
func Name(name string) ContainerOption {
	return func(c *Container) error {
		c.name = strings.TrimSuffix(name, ".")
		return nil
	}
}

// Alias registers alias as shorthand for the fully qualified qualifiedName,
// the way a `using` or `import ... as` declaration would (spec §12
// "Container abbreviations").
func Alias(alias, qualifiedName string) ContainerOption {
	return func(c *Container) error {
		if strings.ContainsRune(alias, '.') {
			return &aliasError{alias: alias}
		}
		c.aliases[alias] = qualifiedName
		return nil
	}
}

type aliasError struct{ alias string }

func (e *aliasError) Error() string {
	return "alias must be a single identifier, got: " + e.alias
}

// Aliases returns a copy of the alias table, for inspection/merging.
func (c *Container) Aliases() map[string]string {
	out := make(map[string]string, len(c.aliases))
	for k, v := range c.aliases {
		out[k] = v
	}
	return out
}

// Extend returns a new Container nested one level deeper, e.g. Name("a.b")
// extended with "c" yields "a.b.c"; aliases are inherited.
func (c *Container) Extend(segment string) *Container {
	name := segment
	if c.name != "" {
		name = c.name + "." + segment
	}
	return &Container{name: name, aliases: c.Aliases()}
}

// Name returns the container's fully qualified namespace.
func (c *Container) Name() string {
	if c == nil {
		return ""
	}
	return c.name
}

// ResolveCandidateNames returns every fully qualified name a reference
// named `name` could resolve to, most specific first, the way C++ searches
// enclosing namespaces outward to the global scope:
//
//	container "a.b.c", name "R" -> ["a.b.c.R", "a.b.R", "a.R", "R"]
//
// An absolute reference (leading '.') skips the search and resolves to
// exactly the root-qualified name.
func (c *Container) ResolveCandidateNames(name string) []string {
	if strings.HasPrefix(name, ".") {
		return []string{name[1:]}
	}
	if c == nil || c.name == "" {
		return []string{name}
	}
	segments := strings.Split(c.name, ".")
	candidates := make([]string, 0, len(segments)+1)
	for i := len(segments); i > 0; i-- {
		candidates = append(candidates, strings.Join(segments[:i], ".")+"."+name)
	}
	candidates = append(candidates, name)
	return candidates
}

// AliasedCandidates expands the alias table: if the reference's leading
// segment matches a registered alias, it returns the alias's expansion
// (with the rest of the reference appended), otherwise nil.
// ResolveCandidateNames does not consult aliases; ResolveName tries these
// candidates before namespace search (spec §12).
func (c *Container) AliasedCandidates(name string) []string {
	if c == nil || len(c.aliases) == 0 {
		return nil
	}
	head := name
	rest := ""
	if idx := strings.IndexByte(name, '.'); idx >= 0 {
		head = name[:idx]
		rest = name[idx:]
	}
	if expansion, found := c.aliases[head]; found {
		return []string{expansion + rest}
	}
	return nil
}

// ResolveName combines alias expansion and namespace search into the
// single ordered candidate list the checker's identifier/function
// resolution walks (spec §4.C): alias hit first (most specific override),
// then namespace search from most to least specific.
func (c *Container) ResolveName(name string) []string {
	candidates := c.AliasedCandidates(name)
	return append(candidates, c.ResolveCandidateNames(name)...)
}
