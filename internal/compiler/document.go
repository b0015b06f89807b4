package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/tetra/internal/ir"
)

// CompileDocument turns a CUE value into a LayoutDocument.
//
// The value holds two fields:
//
//	common: {
//		aspect_ratio_threshold: 1.4
//		landscape: {aspect_ratio_width: 16, aspect_ratio_height: 10}
//		loading_texture: {landscape: "load_l.png", portrait: "load_p.png"}
//		load_screen: landscape: Train: {x: 0, y: 0, divisor: 1080}
//	}
//	root: {
//		type:  "Root"
//		label: "root"
//		children: [...]
//	}
//
// Position tables are keyed by orientation then style; style names are
// matched in any letter case. Structural problems (unknown orientation,
// a style under the wrong orientation, bad types) fail compilation.
// Semantic problems such as missing rules are left to Validate.
func CompileDocument(v cue.Value) (*ir.LayoutDocument, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	doc := &ir.LayoutDocument{}

	commonVal := v.LookupPath(cue.ParsePath("common"))
	if !commonVal.Exists() {
		return nil, &CompileError{Field: "common", Message: "common is required", Pos: v.Pos()}
	}
	common, err := compileCommon(commonVal)
	if err != nil {
		return nil, err
	}
	doc.Common = common

	rootVal := v.LookupPath(cue.ParsePath("root"))
	if !rootVal.Exists() {
		return nil, &CompileError{Field: "root", Message: "root is required", Pos: v.Pos()}
	}
	root, err := compileNode(rootVal, "root")
	if err != nil {
		return nil, err
	}
	doc.Root = root

	return doc, nil
}

func compileCommon(v cue.Value) (ir.CommonData, error) {
	var common ir.CommonData
	if err := v.Decode(&common); err != nil {
		return common, formatCUEError(err)
	}

	lsVal := v.LookupPath(cue.ParsePath("load_screen"))
	if lsVal.Exists() {
		table, err := compileTable(lsVal, "common.load_screen")
		if err != nil {
			return common, err
		}
		common.LoadScreen = table
	}
	return common, nil
}

// nodeFields are the scalar fields of a node decoded in one go; children
// and position are walked separately to keep their source positions.
type nodeFields struct {
	Type                    ir.ElementType  `json:"type"`
	Label                   string          `json:"label"`
	VisibilityByGameState   map[string]bool `json:"visibility_by_game_state"`
	RequiresLoading         bool            `json:"requires_loading"`
	WaitsForParentDimension bool            `json:"waits_for_parent_dimension"`
	Action                  string          `json:"action"`
	Texture                 string          `json:"texture"`
	LowSheet                *ir.SpriteSheet `json:"low_sheet"`
	HighSheet               *ir.SpriteSheet `json:"high_sheet"`
	ZIndex                  int             `json:"z_index"`
	Alpha                   *float64        `json:"alpha"`
	Scale                   *float64        `json:"scale"`
	Visible                 *bool           `json:"visible"`
	Width                   float64         `json:"width"`
	Height                  float64         `json:"height"`
}

func compileNode(v cue.Value, path string) (*ir.LayoutNode, error) {
	typeVal := v.LookupPath(cue.ParsePath("type"))
	if !typeVal.Exists() {
		return nil, &CompileError{Field: path + ".type", Message: "type is required", Pos: v.Pos()}
	}
	labelVal := v.LookupPath(cue.ParsePath("label"))
	if !labelVal.Exists() {
		return nil, &CompileError{Field: path + ".label", Message: "label is required", Pos: v.Pos()}
	}

	var f nodeFields
	if err := v.Decode(&f); err != nil {
		return nil, formatCUEError(err)
	}

	label, err := ir.ParseElementID(f.Label)
	if err != nil {
		return nil, &CompileError{Field: path + ".label", Message: err.Error(), Pos: labelVal.Pos()}
	}

	node := &ir.LayoutNode{
		Type:                    f.Type,
		Label:                   label,
		RequiresLoading:         f.RequiresLoading,
		WaitsForParentDimension: f.WaitsForParentDimension,
		Action:                  f.Action,
		Texture:                 f.Texture,
		LowSheet:                f.LowSheet,
		HighSheet:               f.HighSheet,
		ZIndex:                  f.ZIndex,
		Alpha:                   f.Alpha,
		Scale:                   f.Scale,
		Visible:                 f.Visible,
		Width:                   f.Width,
		Height:                  f.Height,
	}

	if len(f.VisibilityByGameState) > 0 {
		node.VisibilityByGameState = make(map[ir.GameMode]bool, len(f.VisibilityByGameState))
		for raw, visible := range f.VisibilityByGameState {
			mode, err := ir.ParseGameMode(raw)
			if err != nil {
				return nil, &CompileError{
					Field:   path + ".visibility_by_game_state",
					Message: err.Error(),
					Pos:     v.LookupPath(cue.ParsePath("visibility_by_game_state")).Pos(),
				}
			}
			node.VisibilityByGameState[mode] = visible
		}
	}

	posVal := v.LookupPath(cue.ParsePath("position"))
	if posVal.Exists() {
		node.Position, err = compileTable(posVal, path+".position")
		if err != nil {
			return nil, err
		}
	}

	childrenVal := v.LookupPath(cue.ParsePath("children"))
	if childrenVal.Exists() {
		iter, err := childrenVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for i := 0; iter.Next(); i++ {
			child, err := compileNode(iter.Value(), fmt.Sprintf("%s.children[%d]", path, i))
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
		}
	}

	return node, nil
}

// compileTable parses {orientation: {style: rule}}.
func compileTable(v cue.Value, path string) (ir.PositionTable, error) {
	table := ir.PositionTable{}

	orientIter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for orientIter.Next() {
		orient, err := ir.ParseOrientation(orientIter.Label())
		if err != nil {
			return nil, &CompileError{Field: path, Message: err.Error(), Pos: orientIter.Value().Pos()}
		}

		styleIter, err := orientIter.Value().Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for styleIter.Next() {
			field := fmt.Sprintf("%s.%s.%s", path, orient, styleIter.Label())
			s, err := ir.ParseStyle(styleIter.Label())
			if err != nil {
				return nil, &CompileError{Field: field, Message: err.Error(), Pos: styleIter.Value().Pos()}
			}
			if s.Orientation() != orient {
				return nil, &CompileError{
					Field:   field,
					Message: fmt.Sprintf("style %s belongs under %s", s, s.Orientation()),
					Pos:     styleIter.Value().Pos(),
				}
			}

			var rule ir.PositionRule
			if err := styleIter.Value().Decode(&rule); err != nil {
				return nil, formatCUEError(err)
			}
			table.Set(orient, s, rule)
		}
	}
	return table, nil
}
