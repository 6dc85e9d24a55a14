package dto

import (
	"time"

	"github.com/quoteboard/quoteboard/internal/model"
)

// CreateGroupRequest represents the request body for creating a group.
type CreateGroupRequest struct {
	Name string `json:"name"`
}

// GroupResponse represents a group in API responses.
type GroupResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ToGroupResponse converts a group model to its API shape.
func ToGroupResponse(group *model.Group) GroupResponse {
	return GroupResponse{
		ID:        group.ID,
		Name:      group.Name,
		CreatedAt: group.CreatedAt,
	}
}

// GroupListResponse represents the groups a caller may file quotes into,
// plus the UI hint for whether a group choice is worth presenting.
type GroupListResponse struct {
	Data              []GroupResponse `json:"data"`
	ShowGroupSelector bool            `json:"show_group_selector"`
}

// ToGroupListResponse converts group models to the list shape.
func ToGroupListResponse(groups []*model.Group, showSelector bool) GroupListResponse {
	data := make([]GroupResponse, 0, len(groups))
	for _, group := range groups {
		data = append(data, ToGroupResponse(group))
	}
	return GroupListResponse{Data: data, ShowGroupSelector: showSelector}
}
