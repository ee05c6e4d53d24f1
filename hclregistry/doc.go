// Package hclregistry loads a matclass.Registry from HCL files.
//
// A registry file declares texture import defaults, shader families with
// their signature, discriminator, variants and texture rules, and shader
// declarations listing properties with kinds, defaults and domains:
//
//	defaults {
//	  compression = "compressed"
//	  max_size    = 2048
//	}
//
//	family "toon_character" {
//	  signature     = ["_MainTex", "_ShadowColor", "_BodyPart"]
//	  discriminator = "_BodyPart"
//	  textures      = ["_MainTex"]
//
//	  variant "base" { value = 0 }
//	  variant "face" {
//	    value  = 2
//	    tokens = ["face"]
//	  }
//
//	  rules { mipmaps = false }
//	  slot_rule "_LightMap" { srgb = false }
//	}
//
//	shader "Custom/ToonCharacter" {
//	  family = "toon_character"
//	  property "_OutlineWidth" {
//	    kind    = "float"
//	    default = 0.03
//	    min     = 0
//	    max     = 1
//	  }
//	}
//
// Default returns the registry embedded in the package.
package hclregistry
