package graphql

import (
	"sort"
	"strconv"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/cluso-netbuilder/pkg/combinatorics"
	"github.com/dd0wney/cluso-netbuilder/pkg/editor"
	"github.com/dd0wney/cluso-netbuilder/pkg/network"
)

// Object types are built once and shared by every schema.
var (
	nodeType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Node",
		Fields: graphql.Fields{
			"id":   &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"name": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"x":    &graphql.Field{Type: graphql.Float},
			"y":    &graphql.Field{Type: graphql.Float},
		},
	})

	linkType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Link",
		Fields: graphql.Fields{
			"source": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"target": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"sign":   &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
			"label":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	signedInputType = graphql.NewObject(graphql.ObjectConfig{
		Name: "SignedInput",
		Fields: graphql.Fields{
			"source": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"sign":   &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		},
	})

	orGroupType = graphql.NewObject(graphql.ObjectConfig{
		Name: "OrGroup",
		Fields: graphql.Fields{
			"inputs": &graphql.Field{Type: graphql.NewList(signedInputType)},
		},
	})

	logicType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Logic",
		Fields: graphql.Fields{
			"node":   &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"name":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"groups": &graphql.Field{Type: graphql.NewList(orGroupType)},
		},
	})

	networkType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Network",
		Fields: graphql.Fields{
			"nodes": &graphql.Field{Type: graphql.NewList(nodeType)},
			"links": &graphql.Field{Type: graphql.NewList(linkType)},
			"logic": &graphql.Field{Type: graphql.NewList(logicType)},
		},
	})

	figureType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Figure",
		Fields: graphql.Fields{
			"label":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"value":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"display": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	componentType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Component",
		Fields: graphql.Fields{
			"node":       &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"name":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"in":         &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"out":        &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"shape":      &graphql.Field{Type: graphql.NewList(graphql.Int)},
			"key":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"role":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"factor":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"classified": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		},
	})

	selectionType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Selection",
		Fields: graphql.Fields{
			"node":      &graphql.Field{Type: graphql.Int},
			"link":      &graphql.Field{Type: linkType},
			"inspected": &graphql.Field{Type: graphql.Int},
			"input":     &graphql.Field{Type: graphql.Int},
		},
	})

	// reportType carries the large counts as decimal strings; they overflow
	// GraphQL's 32-bit Int almost immediately.
	reportType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Report",
		Fields: graphql.Fields{
			"session":            &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"revision":           &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"network":            &graphql.Field{Type: networkType},
			"specification":      &graphql.Field{Type: graphql.NewList(graphql.String)},
			"specificationText":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"parameterGraphSize": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"reorderings":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"allOrderings":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"figures":            &graphql.Field{Type: graphql.NewList(figureType)},
			"components":         &graphql.Field{Type: graphql.NewList(componentType)},
			"unclassified":       &graphql.Field{Type: graphql.NewList(graphql.Int)},
			"unsupportedKeys":    &graphql.Field{Type: graphql.NewList(graphql.String)},
			"supported":          &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
			"selection":          &graphql.Field{Type: selectionType},
		},
	})

	sessionType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Session",
		Fields: graphql.Fields{
			"id":     &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"token":  &graphql.Field{Type: graphql.String},
			"report": &graphql.Field{Type: reportType},
		},
	})
)

// reportValue flattens a report into the maps the default resolver walks.
func reportValue(r editor.Report) map[string]any {
	unclassified := r.Unclassified
	if unclassified == nil {
		unclassified = []int{}
	}
	return map[string]any{
		"session":            r.Session,
		"revision":           int(r.Revision),
		"network":            networkValue(r.Network),
		"specification":      r.Specification,
		"specificationText":  r.SpecificationText(),
		"parameterGraphSize": r.ParameterGraphSize,
		"reorderings":        r.Reorderings,
		"allOrderings":       r.AllOrderings,
		"figures":            figureValues(r.Figures),
		"components":         componentValues(r.Components),
		"unclassified":       unclassified,
		"unsupportedKeys":    r.UnsupportedKeys(),
		"supported":          r.Supported,
		"selection":          selectionValue(r.Selection),
	}
}

func networkValue(s network.Snapshot) map[string]any {
	nodes := make([]map[string]any, len(s.Nodes))
	for i, n := range s.Nodes {
		v := map[string]any{"id": n.ID, "name": n.Name}
		if n.Position != nil {
			v["x"] = n.Position.X
			v["y"] = n.Position.Y
		}
		nodes[i] = v
	}

	links := make([]map[string]any, len(s.Links))
	for i, l := range s.Links {
		links[i] = linkValue(l)
	}

	ids := make([]int, 0, len(s.Logic))
	for id := range s.Logic {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	logic := make([]map[string]any, len(ids))
	for i, id := range ids {
		groups := make([]map[string]any, len(s.Logic[id]))
		for j, g := range s.Logic[id] {
			inputs := make([]map[string]any, len(g.Inputs))
			for k, in := range g.Inputs {
				inputs[k] = map[string]any{"source": in.Source, "sign": in.Sign}
			}
			groups[j] = map[string]any{"inputs": inputs}
		}
		logic[i] = map[string]any{"node": id, "name": network.NodeName(id), "groups": groups}
	}

	return map[string]any{"nodes": nodes, "links": links, "logic": logic}
}

func linkValue(l network.Link) map[string]any {
	return map[string]any{
		"source": l.Source,
		"target": l.Target,
		"sign":   l.Sign,
		"label":  l.String(),
	}
}

func figureValues(figures []combinatorics.Figure) []map[string]any {
	out := make([]map[string]any, len(figures))
	for i, f := range figures {
		out[i] = map[string]any{"label": f.Label, "value": f.Value, "display": f.Display}
	}
	return out
}

func componentValues(components []combinatorics.Component) []map[string]any {
	out := make([]map[string]any, len(components))
	for i, c := range components {
		out[i] = map[string]any{
			"node":       c.NodeID,
			"name":       c.Name,
			"in":         c.In,
			"out":        c.Out,
			"shape":      c.Shape,
			"key":        c.Key,
			"role":       string(c.Role),
			"factor":     strconv.FormatInt(c.Factor, 10),
			"classified": c.Classified,
		}
	}
	return out
}

func selectionValue(s editor.Selection) map[string]any {
	out := map[string]any{}
	if s.Node != nil {
		out["node"] = *s.Node
	}
	if s.Link != nil {
		out["link"] = linkValue(*s.Link)
	}
	if s.Inspected != nil {
		out["inspected"] = *s.Inspected
	}
	if s.Input != nil {
		out["input"] = *s.Input
	}
	return out
}
