package admin

import (
	"strconv"
	"strings"

	"github.com/carenation/backend/internal/http/response"

	"github.com/gin-gonic/gin"
)

// RoleRequest create a role
type RoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// PolicyRequest grant or revoke one permission on a role
type PolicyRequest struct {
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

// AdminRolesRequest replace an admin's role set
type AdminRolesRequest struct {
	Roles []string `json:"roles"`
}

// ListRoles returns every known role name
func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "role fetch failed", err)
		return
	}
	response.Success(c, roles)
}

// CreateRole registers a role name, idempotently
func (h *Handler) CreateRole(c *gin.Context) {
	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	role, err := h.AuthzService.EnsureRole(req.Role)
	if err != nil {
		respondError(c, response.CodeInternal, "role create failed", err)
		return
	}
	response.Success(c, gin.H{"role": role})
}

// DeleteRole removes a role and every grant that references it
func (h *Handler) DeleteRole(c *gin.Context) {
	role := strings.TrimSpace(c.Param("role"))
	if role == "" {
		respondError(c, response.CodeBadRequest, "role is required", nil)
		return
	}
	if err := h.AuthzService.DeleteRole(role); err != nil {
		respondError(c, response.CodeInternal, "role delete failed", err)
		return
	}
	response.Success(c, nil)
}

// GetRolePolicies lists the permissions attached to one role
func (h *Handler) GetRolePolicies(c *gin.Context) {
	role := strings.TrimSpace(c.Param("role"))
	if role == "" {
		respondError(c, response.CodeBadRequest, "role is required", nil)
		return
	}
	policies, err := h.AuthzService.GetRolePolicies(role)
	if err != nil {
		respondError(c, response.CodeInternal, "policy fetch failed", err)
		return
	}
	response.Success(c, policies)
}

// GrantRolePolicy attaches one permission to a role
func (h *Handler) GrantRolePolicy(c *gin.Context) {
	role := strings.TrimSpace(c.Param("role"))
	var req PolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	if err := h.AuthzService.GrantRolePolicy(role, req.Object, req.Action); err != nil {
		respondError(c, response.CodeInternal, "policy grant failed", err)
		return
	}
	response.Success(c, nil)
}

// RevokeRolePolicy detaches one permission from a role
func (h *Handler) RevokeRolePolicy(c *gin.Context) {
	role := strings.TrimSpace(c.Param("role"))
	var req PolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	if err := h.AuthzService.RevokeRolePolicy(role, req.Object, req.Action); err != nil {
		respondError(c, response.CodeInternal, "policy revoke failed", err)
		return
	}
	response.Success(c, nil)
}

// GetAdminRoles returns the role set held by one admin account
func (h *Handler) GetAdminRoles(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid admin id", nil)
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(uint(id))
	if err != nil {
		respondError(c, response.CodeInternal, "role fetch failed", err)
		return
	}
	response.Success(c, roles)
}

// SetAdminRoles replaces the role set held by one admin account
func (h *Handler) SetAdminRoles(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid admin id", nil)
		return
	}
	var req AdminRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	if err := h.AuthzService.SetAdminRoles(uint(id), req.Roles); err != nil {
		respondError(c, response.CodeInternal, "role assignment failed", err)
		return
	}
	response.Success(c, nil)
}

// GetAdminPolicies returns the effective permissions of one admin account,
// roles flattened.
func (h *Handler) GetAdminPolicies(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid admin id", nil)
		return
	}
	policies, err := h.AuthzService.GetAdminPolicies(uint(id))
	if err != nil {
		respondError(c, response.CodeInternal, "policy fetch failed", err)
		return
	}
	response.Success(c, policies)
}
