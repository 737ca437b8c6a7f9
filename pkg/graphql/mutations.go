package graphql

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/cluso-netbuilder/pkg/editor"
	"github.com/dd0wney/cluso-netbuilder/pkg/network"
	"github.com/dd0wney/cluso-netbuilder/pkg/validation"
)

func (r *resolver) mutationType() *graphql.Object {
	sessionArg := &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)}
	nodeIDArg := func() *graphql.ArgumentConfig {
		return &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)}
	}
	linkArgs := graphql.FieldConfigArgument{
		"session": sessionArg,
		"source":  nodeIDArg(),
		"target":  nodeIDArg(),
	}

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createSession": &graphql.Field{
				Type:    sessionType,
				Resolve: r.createSession,
			},
			"closeSession": &graphql.Field{
				Type:    graphql.Boolean,
				Args:    graphql.FieldConfigArgument{"session": sessionArg},
				Resolve: r.closeSession,
			},
			"addNode": &graphql.Field{
				Type: reportType,
				Args: graphql.FieldConfigArgument{
					"session": sessionArg,
					"x":       &graphql.ArgumentConfig{Type: graphql.Float},
					"y":       &graphql.ArgumentConfig{Type: graphql.Float},
				},
				Resolve: r.execute(addNodeCommand),
			},
			"addLink": &graphql.Field{
				Type: reportType,
				Args: linkArgs,
				Resolve: r.execute(func(p graphql.ResolveParams) (editor.Command, error) {
					src, dst, err := linkEnds(p)
					return editor.AddLink{Source: src, Target: dst}, err
				}),
			},
			"removeLink": &graphql.Field{
				Type: reportType,
				Args: linkArgs,
				Resolve: r.execute(func(p graphql.ResolveParams) (editor.Command, error) {
					src, dst, err := linkEnds(p)
					return editor.RemoveLink{Source: src, Target: dst}, err
				}),
			},
			"toggleLinkSign": &graphql.Field{
				Type: reportType,
				Args: linkArgs,
				Resolve: r.execute(func(p graphql.ResolveParams) (editor.Command, error) {
					src, dst, err := linkEnds(p)
					return editor.ToggleLinkSign{Source: src, Target: dst}, err
				}),
			},
			"removeNode": &graphql.Field{
				Type: reportType,
				Args: graphql.FieldConfigArgument{
					"session": sessionArg,
					"node":    nodeIDArg(),
				},
				Resolve: r.execute(func(p graphql.ResolveParams) (editor.Command, error) {
					id, err := nodeArg(p, "node")
					return editor.RemoveNode{Node: id}, err
				}),
			},
			"mergeLogicInput": &graphql.Field{
				Type: reportType,
				Args: graphql.FieldConfigArgument{
					"session":        sessionArg,
					"input":          nodeIDArg(),
					"representative": nodeIDArg(),
					"target":         nodeIDArg(),
				},
				Resolve: r.execute(mergeCommand),
			},
			"detachLogicInput": &graphql.Field{
				Type: reportType,
				Args: graphql.FieldConfigArgument{
					"session": sessionArg,
					"input":   nodeIDArg(),
					"target":  nodeIDArg(),
				},
				Resolve: r.execute(func(p graphql.ResolveParams) (editor.Command, error) {
					input, err := nodeArg(p, "input")
					if err != nil {
						return nil, err
					}
					target, err := nodeArg(p, "target")
					return editor.DetachLogicInput{Input: input, Target: target}, err
				}),
			},
			// execute takes one line of the script language, which covers the
			// selection commands as well as the model edits.
			"execute": &graphql.Field{
				Type: reportType,
				Args: graphql.FieldConfigArgument{
					"session": sessionArg,
					"command": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.execute(func(p graphql.ResolveParams) (editor.Command, error) {
					line, _ := p.Args["command"].(string)
					return editor.ParseCommand(line)
				}),
			},
			"runScript": &graphql.Field{
				Type: reportType,
				Args: graphql.FieldConfigArgument{
					"session": sessionArg,
					"script":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.runScript,
			},
		},
	})
}

func addNodeCommand(p graphql.ResolveParams) (editor.Command, error) {
	req := validation.NodeRequest{}
	if x, ok := p.Args["x"].(float64); ok {
		req.X = &x
	}
	if y, ok := p.Args["y"].(float64); ok {
		req.Y = &y
	}
	if err := validation.ValidateNodeRequest(&req); err != nil {
		return nil, err
	}
	if req.X == nil {
		return editor.AddNode{}, nil
	}
	return editor.AddNode{Position: &network.Point{X: *req.X, Y: *req.Y}}, nil
}

func mergeCommand(p graphql.ResolveParams) (editor.Command, error) {
	var ids [3]int
	for i, name := range []string{"input", "representative", "target"} {
		id, err := nodeArg(p, name)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return editor.MergeLogicInput{Input: ids[0], Representative: ids[1], Target: ids[2]}, nil
}

func linkEnds(p graphql.ResolveParams) (int, int, error) {
	src, err := nodeArg(p, "source")
	if err != nil {
		return 0, 0, err
	}
	dst, err := nodeArg(p, "target")
	if err != nil {
		return 0, 0, err
	}
	return src, dst, nil
}

func nodeArg(p graphql.ResolveParams, name string) (int, error) {
	id, ok := p.Args[name].(int)
	if !ok {
		return 0, fmt.Errorf("argument %q must be an integer", name)
	}
	if err := validation.ValidateNodeID(id); err != nil {
		return 0, err
	}
	return id, nil
}
