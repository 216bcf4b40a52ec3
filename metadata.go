package coverpick

import (
	"bytes"

	"github.com/bep/imagemeta"
)

// RightsMetadata holds the credit and copyright fields embedded in an image.
type RightsMetadata struct {
	Copyright string `json:"copyright,omitempty"` // EXIF Copyright, IPTC CopyrightNotice or XMP dc:rights
	Creator   string `json:"creator,omitempty"`   // EXIF Artist, IPTC By-line or XMP dc:creator
	Credit    string `json:"credit,omitempty"`    // IPTC Credit
	License   string `json:"license,omitempty"`   // XMP License / WebStatement
}

// wantedTags maps (source, tag-name) for every tag we read.
var wantedTags = map[imagemeta.Source]map[string]bool{
	imagemeta.IPTC: {
		"CopyrightNotice": true,
		"Credit":          true,
		"Byline":          true,
	},
	imagemeta.EXIF: {
		"Copyright": true,
		"Artist":    true,
	},
	imagemeta.XMP: {
		"WebStatement": true,
		"License":      true,
		"Rights":       true,
		"Creator":      true,
	},
}

// ExtractRightsMetadata parses EXIF/IPTC/XMP rights fields from raw image
// bytes. Returns nil when nothing is found or the data cannot be parsed.
func ExtractRightsMetadata(data []byte) *RightsMetadata {
	if len(data) == 0 {
		return nil
	}

	meta := &RightsMetadata{}
	found := false
	set := func(dst *string, v any) {
		if *dst != "" {
			return
		}
		if s := tagValueString(v); s != "" {
			*dst = s
			found = true
		}
	}

	// The first non-empty value seen for a field wins.
	_, err := imagemeta.Decode(imagemeta.Options{
		R:       bytes.NewReader(data),
		Sources: imagemeta.EXIF | imagemeta.IPTC | imagemeta.XMP,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			if tags, ok := wantedTags[ti.Source]; ok {
				return tags[ti.Tag]
			}
			return false
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			switch ti.Tag {
			case "Copyright", "CopyrightNotice", "Rights":
				set(&meta.Copyright, ti.Value)
			case "Artist", "Byline", "Creator":
				set(&meta.Creator, ti.Value)
			case "Credit":
				set(&meta.Credit, ti.Value)
			case "License", "WebStatement":
				set(&meta.License, ti.Value)
			}
			return nil
		},
	})
	if err != nil || !found {
		return nil
	}
	return meta
}

// tagValueString extracts a string from a tag value.
// XMP values may be string or []string (from altList/seqList).
func tagValueString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		if len(val) > 0 {
			return val[0]
		}
		return ""
	case []any:
		if len(val) > 0 {
			if s, ok := val[0].(string); ok {
				return s
			}
		}
		return ""
	default:
		return ""
	}
}
