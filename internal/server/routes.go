// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plotwise Contributors

package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/plotwise-dev/plotwise/internal/graph"
	"github.com/plotwise-dev/plotwise/internal/recommend"
	"github.com/plotwise-dev/plotwise/internal/store"
	pwerr "github.com/plotwise-dev/plotwise/pkg/errors"
)

// RegisterServices sets the service dependencies and registers REST routes.
func (s *Server) RegisterServices(svc *Services) {
	s.services = svc
	s.registerRoutes()
}

func (s *Server) registerRoutes() {
	// Plant endpoints
	huma.Register(s.api, huma.Operation{
		OperationID: "find-plants",
		Method:      http.MethodGet,
		Path:        "/api/v1/plants",
		Summary:     "Find plants suited to soil, sun and season",
		Tags:        []string{"plants"},
	}, s.handleFindPlants)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-plant",
		Method:      http.MethodGet,
		Path:        "/api/v1/plants/{id}",
		Summary:     "Get a plant with its growing conditions",
		Tags:        []string{"plants"},
	}, s.handleGetPlant)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-companions",
		Method:      http.MethodGet,
		Path:        "/api/v1/plants/{id}/companions",
		Summary:     "List companion plants",
		Tags:        []string{"plants"},
	}, s.handleListCompanions)

	// Graph endpoints
	huma.Register(s.api, huma.Operation{
		OperationID: "list-nodes",
		Method:      http.MethodGet,
		Path:        "/api/v1/nodes",
		Summary:     "List nodes of one entity type",
		Tags:        []string{"graph"},
	}, s.handleListNodes)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-node",
		Method:      http.MethodGet,
		Path:        "/api/v1/nodes/{id}",
		Summary:     "Get a node",
		Tags:        []string{"graph"},
	}, s.handleGetNode)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-neighbors",
		Method:      http.MethodGet,
		Path:        "/api/v1/nodes/{id}/neighbors",
		Summary:     "List the targets of a node's outgoing edges",
		Tags:        []string{"graph"},
	}, s.handleListNeighbors)

	huma.Register(s.api, huma.Operation{
		OperationID: "graph-stats",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats",
		Summary:     "Node and edge counts",
		Tags:        []string{"system"},
	}, s.handleStats)
}

// --- Request/Response types for huma ---

type findPlantsInput struct {
	SoilType    string `query:"soilType" doc:"SoilType id the plant thrives in"`
	SunExposure string `query:"sunExposure" doc:"SunExposure id the plant needs"`
	Season      string `query:"season" doc:"Season id the plant grows best in"`
}
type findPlantsOutput struct {
	Body struct {
		Plants []recommend.Plant `json:"plants"`
		Count  int               `json:"count"`
	}
}

type idInput struct {
	ID string `path:"id" doc:"Node identifier"`
}

type getPlantOutput struct {
	Body recommend.PlantProfile
}

type listCompanionsOutput struct {
	Body struct {
		Companions []recommend.Plant `json:"companions"`
	}
}

type listNodesInput struct {
	Type string `query:"type" doc:"Entity type: Plant, SoilType, SunExposure or Season"`
}
type listNodesOutput struct {
	Body struct {
		Nodes []*graph.Node `json:"nodes"`
	}
}

type getNodeOutput struct {
	Body graph.Node
}

type listNeighborsOutput struct {
	Body struct {
		Neighbors []graph.Neighbor `json:"neighbors"`
	}
}

type statsOutput struct {
	Body store.Stats
}

// --- Handlers ---

func (s *Server) handleFindPlants(ctx context.Context, input *findPlantsInput) (*findPlantsOutput, error) {
	plants, err := s.services.Plants().FindPlantsBySuitability(ctx, recommend.Criteria{
		SoilType:    input.SoilType,
		SunExposure: input.SunExposure,
		Season:      input.Season,
	})
	if err != nil {
		return nil, s.apiError(ctx, "finding plants", err)
	}
	out := &findPlantsOutput{}
	out.Body.Plants = plants
	out.Body.Count = len(plants)
	return out, nil
}

func (s *Server) handleGetPlant(ctx context.Context, input *idInput) (*getPlantOutput, error) {
	profile, ok, err := s.services.Plants().Profile(ctx, input.ID)
	if err != nil {
		return nil, s.apiError(ctx, fmt.Sprintf("loading plant %q", input.ID), err)
	}
	if !ok {
		return nil, s.notFound(ctx, "plant", input.ID)
	}
	return &getPlantOutput{Body: *profile}, nil
}

func (s *Server) handleListCompanions(ctx context.Context, input *idInput) (*listCompanionsOutput, error) {
	if err := s.requireNode(ctx, input.ID, graph.EntityPlant); err != nil {
		return nil, err
	}
	companions, err := s.services.Plants().Companions(ctx, input.ID)
	if err != nil {
		return nil, s.apiError(ctx, fmt.Sprintf("listing companions of %q", input.ID), err)
	}
	out := &listCompanionsOutput{}
	out.Body.Companions = companions
	return out, nil
}

func (s *Server) handleListNodes(ctx context.Context, input *listNodesInput) (*listNodesOutput, error) {
	t, err := graph.ParseEntityType(input.Type)
	if err != nil {
		return nil, s.apiError(ctx, err.Error(), pwerr.Wrap(err, pwerr.CodeServerRequestInvalid, "parsing type"))
	}
	nodes, err := s.services.Graph().GetNodesByType(ctx, t)
	if err != nil {
		return nil, s.apiError(ctx, fmt.Sprintf("listing %s nodes", t), err)
	}
	out := &listNodesOutput{}
	out.Body.Nodes = nodes
	return out, nil
}

func (s *Server) handleGetNode(ctx context.Context, input *idInput) (*getNodeOutput, error) {
	node, ok, err := s.services.Graph().GetNode(ctx, input.ID)
	if err != nil {
		return nil, s.apiError(ctx, fmt.Sprintf("loading node %q", input.ID), err)
	}
	if !ok {
		return nil, s.notFound(ctx, "node", input.ID)
	}
	return &getNodeOutput{Body: *node}, nil
}

func (s *Server) handleListNeighbors(ctx context.Context, input *idInput) (*listNeighborsOutput, error) {
	if err := s.requireNode(ctx, input.ID, ""); err != nil {
		return nil, err
	}
	neighbors, err := s.services.Graph().GetOutgoingNeighbors(ctx, input.ID)
	if err != nil {
		return nil, s.apiError(ctx, fmt.Sprintf("listing neighbors of %q", input.ID), err)
	}
	out := &listNeighborsOutput{}
	out.Body.Neighbors = neighbors
	return out, nil
}

func (s *Server) handleStats(ctx context.Context, _ *struct{}) (*statsOutput, error) {
	stats, err := s.services.Graph().Stats(ctx)
	if err != nil {
		return nil, s.apiError(ctx, "reading graph stats", err)
	}
	return &statsOutput{Body: stats}, nil
}

// requireNode returns a 404 unless id exists and, when typ is set, has
// that type.
func (s *Server) requireNode(ctx context.Context, id string, typ graph.EntityType) error {
	node, ok, err := s.services.Graph().GetNode(ctx, id)
	if err != nil {
		return s.apiError(ctx, fmt.Sprintf("loading node %q", id), err)
	}
	if !ok || (typ != "" && node.Type != typ) {
		kind := "node"
		if typ == graph.EntityPlant {
			kind = "plant"
		}
		return s.notFound(ctx, kind, id)
	}
	return nil
}

func (s *Server) notFound(ctx context.Context, kind, id string) error {
	msg := fmt.Sprintf("%s %q not found", kind, id)
	return s.apiError(ctx, msg, pwerr.New(pwerr.CodeServerNodeNotFound, msg, pwerr.FieldNodeID(id)))
}

// apiError maps a coded error to its HTTP status. Server-side failures
// are logged with their code and fields.
func (s *Server) apiError(ctx context.Context, msg string, err error) error {
	status := pwerr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(ctx, msg,
			"error", err,
			"code", string(pwerr.CodeOf(err)),
			"fields", pwerr.FieldsOf(err),
		)
	}
	return huma.NewError(status, msg, err)
}
