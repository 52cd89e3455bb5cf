package admin

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/igtharvillage/thar-api/model"
	"github.com/igtharvillage/thar-api/services"
	"github.com/igtharvillage/thar-api/utils/middleware"
	"github.com/igtharvillage/thar-api/utils/response"
	"go.uber.org/zap"
)

// UpdateRoleRequest represents the request body for changing a user's role
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin user"`
}

// ListUsers retrieves profiles with pagination
// GET /admin/users
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	page, limit := response.PageParams(c, 20)
	role := c.Query("role")
	if role != "" && role != model.RoleAdmin && role != model.RoleUser {
		return response.BadRequest(c, "Role must be admin or user")
	}

	users, total, err := h.users.List(c.UserContext(), role, page, limit)
	if err != nil {
		zap.S().Errorf("[GATE] failed to list profiles: %v", err)
		return response.InternalServerError(c, "Failed to fetch users")
	}

	return response.Paginated(c, users, response.CalculatePagination(page, limit, total))
}

// UpdateUserRole changes a user's role and signs them out everywhere so the
// new role applies to their next session
// PUT /admin/users/:id/role
func (h *AdminHandler) UpdateUserRole(c *fiber.Ctx) error {
	uid := c.Params("id")

	var req UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if errs := h.validator.Check(req); errs != nil {
		return response.ValidationError(c, errs)
	}

	if self, ok := middleware.GetUserID(c); ok && self == uid {
		return response.BadRequest(c, "You cannot change your own role")
	}

	ctx := c.UserContext()
	if err := h.users.SetRole(ctx, uid, req.Role); err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			return response.NotFound(c, "User not found")
		}
		zap.S().Errorf("[GATE] failed to set role of %s: %v", uid, err)
		return response.InternalServerError(c, "Failed to update role")
	}

	if err := h.sessions.RevokeAll(ctx, uid); err != nil {
		zap.S().Warnf("[GATE] failed to revoke sessions of %s: %v", uid, err)
	}

	profile, err := h.users.Get(ctx, uid)
	if err != nil {
		return response.SuccessWithMessage(c, "Role updated successfully", fiber.Map{"id": uid, "role": req.Role})
	}
	return response.SuccessWithMessage(c, "Role updated successfully", profile)
}
