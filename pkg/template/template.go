/*
Copyright 2024 The Node Provider Labeler Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package template compiles and renders the value templates used to derive
// node metadata from a provider id. A template mixes literal text with
// tokens delimited by "{" and "}":
//
//	{:provider}  the provider name
//	{:first}     the first node id segment
//	{:last}      the last node id segment
//	{:all}       all node id segments, joined
//	{N}          the node id segment at zero-based index N
//
// Templates are compiled once at startup and rendered once per reconcile
// cycle. Rendering is domain aware: label values may not contain "/", so
// the label domain joins {:all} with "_" and substitutes "/" in any token
// output, while the annotation domain joins with "/" untouched.
package template

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jossware/node-provider-labeler/pkg/providerid"
)

// Default is the template compiled for a configured key that names no
// template of its own.
const Default = "{:last}"

// maxLabelValueLength bounds rendered label-domain values, per the
// Kubernetes label value syntax.
const maxLabelValueLength = 63

var (
	ErrUnknownToken      = errors.New("unknown token")
	ErrMalformedTemplate = errors.New("malformed template")
	ErrMissingProviderID = errors.New("missing provider id")
	ErrIndexOutOfRange   = errors.New("segment index out of range")
)

// Domain is the target metadata kind a template renders for. It governs the
// character rules applied during rendering, not afterwards.
type Domain string

const (
	DomainLabel      Domain = "label"
	DomainAnnotation Domain = "annotation"
)

type tokenKind int

const (
	tokenLiteral tokenKind = iota
	tokenProvider
	tokenFirst
	tokenLast
	tokenAll
	tokenIndex
)

type token struct {
	kind    tokenKind
	literal string
	index   int
}

// Template is a compiled value template, immutable after Parse.
type Template struct {
	raw    string
	domain Domain
	tokens []token
}

// Parse compiles a template string for the given domain. Unbalanced braces
// produce ErrMalformedTemplate and unrecognized token content produces
// ErrUnknownToken. Label-domain templates reject literal characters that are
// illegal in a label value at compile time rather than at render time.
func Parse(raw string, domain Domain) (*Template, error) {
	t := &Template{raw: raw, domain: domain}

	var literal strings.Builder
	flush := func() {
		if literal.Len() > 0 {
			t.tokens = append(t.tokens, token{kind: tokenLiteral, literal: literal.String()})
			literal.Reset()
		}
	}

	runes := []rune(raw)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '{':
			end := -1
			for j := i + 1; j < len(runes); j++ {
				if runes[j] == '{' {
					return nil, fmt.Errorf("%w %q: nested '{'", ErrMalformedTemplate, raw)
				}
				if runes[j] == '}' {
					end = j
					break
				}
			}
			if end < 0 {
				return nil, fmt.Errorf("%w %q: unbalanced '{'", ErrMalformedTemplate, raw)
			}
			tok, err := parseToken(string(runes[i+1 : end]))
			if err != nil {
				return nil, fmt.Errorf("%w in template %q", err, raw)
			}
			flush()
			t.tokens = append(t.tokens, tok)
			i = end
		case '}':
			return nil, fmt.Errorf("%w %q: unbalanced '}'", ErrMalformedTemplate, raw)
		default:
			if domain == DomainLabel && !isLabelValueRune(runes[i]) {
				return nil, fmt.Errorf("%w %q: character %q not allowed in a label value", ErrMalformedTemplate, raw, runes[i])
			}
			literal.WriteRune(runes[i])
		}
	}
	flush()

	return t, nil
}

// MustParse is Parse for programmer-controlled templates; it panics on error.
func MustParse(raw string, domain Domain) *Template {
	t, err := Parse(raw, domain)
	if err != nil {
		panic(err)
	}
	return t
}

func parseToken(content string) (token, error) {
	switch content {
	case ":provider":
		return token{kind: tokenProvider}, nil
	case ":first":
		return token{kind: tokenFirst}, nil
	case ":last":
		return token{kind: tokenLast}, nil
	case ":all":
		return token{kind: tokenAll}, nil
	}
	if content != "" && strings.IndexFunc(content, func(r rune) bool { return r < '0' || r > '9' }) < 0 {
		n, err := strconv.Atoi(content)
		if err != nil {
			return token{}, fmt.Errorf("%w {%s}: %v", ErrUnknownToken, content, err)
		}
		return token{kind: tokenIndex, index: n}, nil
	}
	return token{}, fmt.Errorf("%w {%s}", ErrUnknownToken, content)
}

func isLabelValueRune(r rune) bool {
	return r == '-' || r == '_' || r == '.' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// Domain returns the metadata domain the template was compiled for.
func (t *Template) Domain() Domain {
	return t.domain
}

func (t *Template) String() string {
	return t.raw
}

// Render resolves the template against a parsed provider id. A nil provider
// id fails with ErrMissingProviderID and an {N} token beyond the last
// segment fails with ErrIndexOutOfRange; both are per-key, per-cycle skips
// for the caller, not fatal conditions.
func (t *Template) Render(pid *providerid.ProviderID) (string, error) {
	if pid == nil {
		return "", ErrMissingProviderID
	}

	var out strings.Builder
	for _, tok := range t.tokens {
		switch tok.kind {
		case tokenLiteral:
			out.WriteString(tok.literal)
		case tokenProvider:
			out.WriteString(t.sanitize(pid.Provider()))
		case tokenFirst:
			v, ok := pid.First()
			if !ok {
				return "", fmt.Errorf("%w: {:first} of %q", ErrIndexOutOfRange, pid)
			}
			out.WriteString(t.sanitize(v))
		case tokenLast:
			v, ok := pid.Last()
			if !ok {
				return "", fmt.Errorf("%w: {:last} of %q", ErrIndexOutOfRange, pid)
			}
			out.WriteString(t.sanitize(v))
		case tokenAll:
			out.WriteString(pid.Join(t.joiner()))
		case tokenIndex:
			v, ok := pid.Nth(tok.index)
			if !ok {
				return "", fmt.Errorf("%w: {%d} of %q with %d segments", ErrIndexOutOfRange, tok.index, pid, pid.SegmentCount())
			}
			out.WriteString(t.sanitize(v))
		}
	}

	rendered := out.String()
	if t.domain == DomainLabel && len(rendered) > maxLabelValueLength {
		rendered = rendered[:maxLabelValueLength]
	}
	return rendered, nil
}

// joiner is the {:all} separator: "_" for labels, where "/" is illegal,
// "/" for annotations, where it is not.
func (t *Template) joiner() string {
	if t.domain == DomainLabel {
		return "_"
	}
	return "/"
}

// sanitize encodes token output for the target domain. Segment values never
// contain "/" by construction, but provider-specific oddities get the same
// substitution the {:all} joiner applies rather than a render failure.
func (t *Template) sanitize(v string) string {
	if t.domain == DomainLabel {
		return strings.ReplaceAll(v, "/", "_")
	}
	return v
}
