package prototype

import (
	"strings"

	"github.com/saeedalam/sketchpp/pkg/types"
)

// Describe splits a prototype into return type, name and parameters for
// reporting. It assumes the shape Extract produces
func Describe(proto string) types.FunctionSig {
	sig := types.FunctionSig{Signature: proto}

	open := strings.Index(proto, "(")
	closeIdx := strings.LastIndex(proto, ")")
	if open < 0 || closeIdx < open {
		return sig
	}

	head := strings.Fields(proto[:open])
	if len(head) == 0 {
		return sig
	}
	name := head[len(head)-1]
	ret := strings.Join(head[:len(head)-1], " ")

	// Pointer and reference markers bind to the return type
	for len(name) > 0 && (name[0] == '*' || name[0] == '&') {
		ret += string(name[0])
		name = name[1:]
	}

	sig.Name = name
	sig.ReturnType = ret
	sig.Params = parseCppParams(proto[open+1 : closeIdx])
	return sig
}

func parseCppParams(paramsStr string) []types.ParamDef {
	if strings.TrimSpace(paramsStr) == "" || strings.TrimSpace(paramsStr) == "void" {
		return nil
	}
	var params []types.ParamDef
	parts := strings.Split(paramsStr, ",")
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		fields := strings.Fields(p)
		name := fields[len(fields)-1]
		typeStr := strings.Join(fields[:len(fields)-1], " ")
		for len(name) > 0 && (name[0] == '*' || name[0] == '&') {
			typeStr += string(name[0])
			name = name[1:]
		}
		// A lone type such as "int" in an unnamed parameter
		if typeStr == "" {
			typeStr, name = name, ""
		}
		params = append(params, types.ParamDef{
			Name: name,
			Type: typeStr,
		})
	}
	return params
}
