package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/personalboard/server/service/board"
	"github.com/hrygo/personalboard/store"
)

const memberDeletedMessage = "Member deleted successfully"

// Member is the JSON form of a board member.
type Member struct {
	ID          string   `json:"id"`
	UserID      string   `json:"user_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Background  string   `json:"background"`
	Role        []string `json:"role"`
	Picture     *string  `json:"picture"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

type CreateMemberRequest struct {
	UserID      string   `json:"user_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Background  string   `json:"background"`
	Role        []string `json:"role"`
	Picture     *string  `json:"picture"`
}

type UpdateMemberRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Background  *string   `json:"background"`
	Role        *[]string `json:"role"`
	Picture     *string   `json:"picture"`
}

func convertMemberFromStore(m *store.Member) *Member {
	role := m.Role
	if role == nil {
		role = []string{}
	}
	return &Member{
		ID:          m.ID,
		UserID:      m.UserID,
		Name:        m.Name,
		Description: m.Description,
		Background:  m.Background,
		Role:        role,
		Picture:     m.Picture,
		CreatedAt:   time.Unix(m.CreatedTs, 0).UTC().Format(time.RFC3339),
		UpdatedAt:   time.Unix(m.UpdatedTs, 0).UTC().Format(time.RFC3339),
	}
}

// GET /api/members/user/:userId
func (s *APIV1Service) ListMembersByUser(c echo.Context) error {
	list, err := s.BoardService.ListMembers(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return s.errorResponse(c, err)
	}

	response := make([]*Member, 0, len(list))
	for _, m := range list {
		response = append(response, convertMemberFromStore(m))
	}
	return c.JSON(http.StatusOK, response)
}

// GET /api/members/:id
func (s *APIV1Service) GetMember(c echo.Context) error {
	member, err := s.BoardService.GetMember(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, convertMemberFromStore(member))
}

// POST /api/members
func (s *APIV1Service) CreateMember(c echo.Context) error {
	req := &CreateMemberRequest{}
	if err := decodeBody(c, s.schemas.createMember, req); err != nil {
		return s.errorResponse(c, err)
	}

	member, err := s.BoardService.CreateMember(c.Request().Context(), &board.CreateMemberRequest{
		UserID:      req.UserID,
		Name:        req.Name,
		Description: req.Description,
		Background:  req.Background,
		Role:        req.Role,
		Picture:     req.Picture,
	})
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, convertMemberFromStore(member))
}

// PUT /api/members/:id
func (s *APIV1Service) UpdateMember(c echo.Context) error {
	req := &UpdateMemberRequest{}
	if err := decodeBody(c, s.schemas.updateMember, req); err != nil {
		return s.errorResponse(c, err)
	}

	member, err := s.BoardService.UpdateMember(c.Request().Context(), c.Param("id"), &board.UpdateMemberRequest{
		Name:        req.Name,
		Description: req.Description,
		Background:  req.Background,
		Role:        req.Role,
		Picture:     req.Picture,
	})
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, convertMemberFromStore(member))
}

// DELETE /api/members/:id
func (s *APIV1Service) DeleteMember(c echo.Context) error {
	if err := s.BoardService.DeleteMember(c.Request().Context(), c.Param("id")); err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: memberDeletedMessage})
}
