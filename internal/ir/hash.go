package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// DomainLayout is the hash domain for layout documents.
// Version suffix enables future algorithm migration.
const DomainLayout = "tetra/layout/v1"

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DocumentHash computes a content-addressed identity for a layout document.
// The journal stamps every recorded event with it so a trace can be tied to
// the exact layout that produced it.
func DocumentHash(doc *LayoutDocument) (string, error) {
	if doc == nil || doc.Root == nil {
		return "", fmt.Errorf("DocumentHash: document has no root")
	}
	data, err := json.Marshal(map[string]any{
		"common": canonicalCommon(doc.Common),
		"root":   canonicalNode(doc.Root),
	})
	if err != nil {
		return "", fmt.Errorf("DocumentHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainLayout, data), nil
}

// canonicalTable renders a PositionTable as nested string-keyed maps so that
// encoding/json emits keys in sorted order.
func canonicalTable(t PositionTable) map[string]map[string]PositionRule {
	out := make(map[string]map[string]PositionRule)
	for k, r := range t {
		o := string(k.Orientation)
		if out[o] == nil {
			out[o] = make(map[string]PositionRule)
		}
		out[o][string(k.Style)] = r
	}
	return out
}

func canonicalCommon(c CommonData) map[string]any {
	return map[string]any{
		"data":        c,
		"load_screen": canonicalTable(c.LoadScreen),
	}
}

func canonicalNode(n *LayoutNode) map[string]any {
	children := make([]any, len(n.Children))
	for i, c := range n.Children {
		children[i] = canonicalNode(c)
	}
	return map[string]any{
		"node":     n.withoutChildren(),
		"position": canonicalTable(n.Position),
		"children": children,
	}
}

// withoutChildren returns a shallow copy with Children cleared so the node is
// marshalled once, by canonicalNode.
func (n *LayoutNode) withoutChildren() LayoutNode {
	cp := *n
	cp.Children = nil
	return cp
}
