package handler

import (
	"lamah/internal/models"
	"lamah/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupQuestion struct {
	container *do.Injector
}

type questionRequest struct {
	models.QuestionData
	Text   string `json:"text" validate:"required"`
	Answer string `json:"answer" validate:"required"`
}

func (r questionRequest) data() models.QuestionData {
	data := r.QuestionData
	data.Text = r.Text
	data.Answer = r.Answer
	return data
}

type verifyRequest struct {
	QuestionIDs []string `json:"questionIds" validate:"required,min=1,dive,required"`
	Verified    *bool    `json:"verified" validate:"required"`
}

func (gr *groupQuestion) Show(c echo.Context) error {
	serviceQuestion, err := do.Invoke[*services.ServiceQuestion](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	question, err := serviceQuestion.GetQuestion(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpx.RestAbort(c, nil, wrapError(err))
	}

	return httpx.RestAbort(c, question, nil)
}

func (gr *groupQuestion) Add(c echo.Context) error {
	ctx := c.Request().Context()

	caller, err := ResolveCaller(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var req questionRequest
	if err := bind(c, &req); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceQuestion, err := do.Invoke[*services.ServiceQuestion](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	id, err := serviceQuestion.AddSingleQuestion(ctx, caller, c.Param("id"), req.data())
	if err != nil {
		return httpx.RestAbort(c, nil, wrapError(err))
	}

	return httpx.RestAbort(c, map[string]interface{}{
		"id": id,
	}, nil)
}

func (gr *groupQuestion) Update(c echo.Context) error {
	ctx := c.Request().Context()

	caller, err := ResolveCaller(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var patch models.QuestionPatch
	if err := bind(c, &patch); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceQuestion, err := do.Invoke[*services.ServiceQuestion](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	question, err := serviceQuestion.UpdateQuestion(ctx, caller, c.Param("id"), patch)
	if err != nil {
		return httpx.RestAbort(c, nil, wrapError(err))
	}

	return httpx.RestAbort(c, question, nil)
}

func (gr *groupQuestion) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	caller, err := ResolveCaller(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceQuestion, err := do.Invoke[*services.ServiceQuestion](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	if err := serviceQuestion.DeleteQuestion(ctx, caller, c.Param("id")); err != nil {
		return httpx.RestAbort(c, nil, wrapError(err))
	}

	return httpx.RestAbort(c, "ok", nil)
}

func (gr *groupQuestion) Verify(c echo.Context) error {
	ctx := c.Request().Context()

	caller, err := ResolveCaller(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var req verifyRequest
	if err := bind(c, &req); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceQuestion, err := do.Invoke[*services.ServiceQuestion](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	result, err := serviceQuestion.SetVerification(ctx, caller, req.QuestionIDs, *req.Verified)
	if err != nil {
		return httpx.RestAbort(c, nil, wrapError(err))
	}

	return httpx.RestAbort(c, map[string]interface{}{
		"succeeded": result.Succeeded,
		"chunks":    result.Chunks,
		"errors":    result.ErrorStrings(),
	}, nil)
}
