package hclregistry

import "github.com/zclconf/go-cty/cty"

// fileRoot is the top-level schema of a registry file.
type fileRoot struct {
	Defaults []*rulesBlock   `hcl:"defaults,block"`
	Families []*familyBlock  `hcl:"family,block"`
	Shaders  []*shaderBlock  `hcl:"shader,block"`
	Fallback []*variantBlock `hcl:"fallback_variant,block"`
}

// rulesBlock overrides texture import settings.
type rulesBlock struct {
	Compression *string `hcl:"compression,optional"`
	MaxSize     *int    `hcl:"max_size,optional"`
	Mipmaps     *bool   `hcl:"mipmaps,optional"`
	SRGB        *bool   `hcl:"srgb,optional"`
}

// slotRuleBlock overrides texture import settings for one slot.
type slotRuleBlock struct {
	Slot        string  `hcl:"slot,label"`
	Compression *string `hcl:"compression,optional"`
	MaxSize     *int    `hcl:"max_size,optional"`
	Mipmaps     *bool   `hcl:"mipmaps,optional"`
	SRGB        *bool   `hcl:"srgb,optional"`
}

// familyBlock is a `family "<id>"` block.
type familyBlock struct {
	ID            string           `hcl:"id,label"`
	Name          string           `hcl:"name,optional"`
	Signature     []string         `hcl:"signature"`
	Discriminator string           `hcl:"discriminator,optional"`
	Textures      []string         `hcl:"textures,optional"`
	Variants      []*variantBlock  `hcl:"variant,block"`
	Rules         *rulesBlock      `hcl:"rules,block"`
	SlotRules     []*slotRuleBlock `hcl:"slot_rule,block"`
}

// variantBlock is a `variant "<name>"` block.
type variantBlock struct {
	Name   string   `hcl:"name,label"`
	Value  int64    `hcl:"value"`
	Tokens []string `hcl:"tokens,optional"`
}

// shaderBlock is a `shader "<name>"` block.
type shaderBlock struct {
	Name       string           `hcl:"name,label"`
	Family     string           `hcl:"family,optional"`
	Properties []*propertyBlock `hcl:"property,block"`
}

// propertyBlock is a `property "<name>"` block inside a shader.
type propertyBlock struct {
	Name    string     `hcl:"name,label"`
	Kind    string     `hcl:"kind"`
	Default *cty.Value `hcl:"default,optional"`
	Min     *float64   `hcl:"min,optional"`
	Max     *float64   `hcl:"max,optional"`
	Options []int64    `hcl:"options,optional"`
}
