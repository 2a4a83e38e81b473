// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize flattens the upstream chat payload into a list of
// candidate businesses. The upstream has returned its business list at
// several nesting paths; each known shape is an independent Probe tried in
// order, and the first non-empty match wins.
package normalize

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/pdiddy/feastfit/pkg/types"
)

// Probe finds the business list for one known payload shape. Find returns
// nil when the shape does not match.
type Probe struct {
	Name string
	Find func(root gjson.Result) []gjson.Result
}

// EntityWrappers matches entities: [{businesses: [...]}, ...] and flattens
// every wrapper's list.
var EntityWrappers = Probe{
	Name: "entities[].businesses",
	Find: func(root gjson.Result) []gjson.Result {
		entities := root.Get("entities")
		if !entities.IsArray() {
			return nil
		}
		var out []gjson.Result
		for _, e := range entities.Array() {
			if b := e.Get("businesses"); b.IsArray() {
				out = append(out, b.Array()...)
			}
		}
		return out
	},
}

// FlatBusinesses matches entities: {businesses: [...]}.
var FlatBusinesses = Probe{
	Name: "entities.businesses",
	Find: arrayAt("entities.businesses"),
}

// BusinessSearch matches entities: {business_search: {businesses: [...]}}.
var BusinessSearch = Probe{
	Name: "entities.business_search.businesses",
	Find: arrayAt("entities.business_search.businesses"),
}

// DefaultProbes is the priority order observed for the chat API.
var DefaultProbes = []Probe{EntityWrappers, FlatBusinesses, BusinessSearch}

// Normalizer extracts businesses using an ordered list of probes.
type Normalizer struct {
	probes []Probe
}

// New creates a Normalizer. With no probes it uses DefaultProbes; extra
// shapes are supported by passing append(DefaultProbes, myProbe).
func New(probes ...Probe) *Normalizer {
	if len(probes) == 0 {
		probes = DefaultProbes
	}
	return &Normalizer{probes: probes}
}

// Extract returns the businesses from the first probe that yields at least
// one object. Invalid JSON and unknown shapes yield nil, never an error.
func (n *Normalizer) Extract(raw []byte) []types.RawBusiness {
	if !gjson.ValidBytes(raw) {
		return nil
	}
	root := gjson.ParseBytes(raw)

	for _, p := range n.probes {
		var out []types.RawBusiness
		for _, item := range p.Find(root) {
			if !item.IsObject() {
				continue
			}
			out = append(out, toBusiness(item))
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// ReplyText returns the prose answer from a chat payload: response.text,
// then a top-level text field, then fallback.
func ReplyText(raw []byte, fallback string) string {
	if !gjson.ValidBytes(raw) {
		return fallback
	}
	for _, path := range []string{"response.text", "text"} {
		if r := gjson.GetBytes(raw, path); r.Type == gjson.String {
			return r.Str
		}
	}
	return fallback
}

func arrayAt(path string) func(gjson.Result) []gjson.Result {
	return func(root gjson.Result) []gjson.Result {
		r := root.Get(path)
		if !r.IsArray() {
			return nil
		}
		return r.Array()
	}
}

// toBusiness reads each field only when it has the expected JSON type.
func toBusiness(b gjson.Result) types.RawBusiness {
	rb := types.RawBusiness{
		ID:             str(b.Get("id")),
		Name:           str(b.Get("name")),
		Rating:         num(b.Get("rating")),
		Price:          str(b.Get("price")),
		URL:            str(b.Get("url")),
		Address1:       str(b.Get("location.address1")),
		City:           str(b.Get("location.city")),
		SummaryShort:   str(b.Get("summaries.short")),
		SummaryMedium:  str(b.Get("summaries.medium")),
		ContextSummary: str(b.Get("contextual_info.summary")),
	}

	if d := b.Get("distance"); d.Type == gjson.Number {
		v := d.Float()
		rb.Distance = &v
	}

	rb.ImageURL = str(b.Get("contextual_info.photos.0.original_url"))
	if rb.ImageURL == "" {
		rb.ImageURL = str(b.Get("image_url"))
	}
	return rb
}

func str(r gjson.Result) string {
	if r.Type != gjson.String {
		return ""
	}
	return strings.TrimSpace(r.Str)
}

func num(r gjson.Result) float64 {
	if r.Type != gjson.Number {
		return 0
	}
	return r.Float()
}
