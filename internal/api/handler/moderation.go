package handler

import (
	"lamah/internal/models"
	"lamah/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupModeration struct {
	container *do.Injector
}

type submitRequest struct {
	questionRequest
	CategoryID string `json:"categoryId" validate:"required"`
}

type approveRequest struct {
	CategoryID string `json:"categoryId"`
}

type denyRequest struct {
	Reason string `json:"reason"`
}

func (gr *groupModeration) Submit(c echo.Context) error {
	ctx := c.Request().Context()

	caller, err := ResolveCaller(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var req submitRequest
	if err := bind(c, &req); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceModeration, err := do.Invoke[*services.ServiceModeration](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	id, err := serviceModeration.SubmitForApproval(ctx, caller, req.CategoryID, req.data())
	if err != nil {
		return httpx.RestAbort(c, nil, wrapError(err))
	}

	return httpx.RestAbort(c, map[string]interface{}{
		"id": id,
	}, nil)
}

func (gr *groupModeration) List(c echo.Context) error {
	ctx := c.Request().Context()

	caller, err := ResolveCaller(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceModeration, err := do.Invoke[*services.ServiceModeration](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	pendings, err := serviceModeration.ListPending(ctx, caller, models.PendingStatus(c.QueryParam("status")))
	if err != nil {
		return httpx.RestAbort(c, nil, wrapError(err))
	}

	return httpx.RestAbort(c, pendings, nil)
}

func (gr *groupModeration) Approve(c echo.Context) error {
	ctx := c.Request().Context()

	caller, err := ResolveCaller(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var req approveRequest
	if err := bind(c, &req); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceModeration, err := do.Invoke[*services.ServiceModeration](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	questionID, err := serviceModeration.Approve(ctx, caller, c.Param("id"), req.CategoryID)
	if err != nil {
		return httpx.RestAbort(c, nil, wrapError(err))
	}

	return httpx.RestAbort(c, map[string]interface{}{
		"questionId": questionID,
	}, nil)
}

func (gr *groupModeration) Deny(c echo.Context) error {
	ctx := c.Request().Context()

	caller, err := ResolveCaller(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var req denyRequest
	if err := bind(c, &req); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceModeration, err := do.Invoke[*services.ServiceModeration](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	if err := serviceModeration.Deny(ctx, caller, c.Param("id"), req.Reason); err != nil {
		return httpx.RestAbort(c, nil, wrapError(err))
	}

	return httpx.RestAbort(c, "ok", nil)
}

func (gr *groupModeration) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	caller, err := ResolveCaller(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceModeration, err := do.Invoke[*services.ServiceModeration](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	if err := serviceModeration.DeletePending(ctx, caller, c.Param("id")); err != nil {
		return httpx.RestAbort(c, nil, wrapError(err))
	}

	return httpx.RestAbort(c, "ok", nil)
}
