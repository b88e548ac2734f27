package handler

import (
	"lamah/internal/models"
	"lamah/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupCategory struct {
	container *do.Injector
}

type createCategoryRequest struct {
	models.CategoryData
	Name string `json:"name" validate:"required"`
}

type mergeCategoriesRequest struct {
	models.CategoryData
	Name              string   `json:"name" validate:"required"`
	SourceCategoryIDs []string `json:"sourceCategoryIds" validate:"required,dive,required"`
}

func (gr *groupCategory) List(c echo.Context) error {
	serviceCategory, err := do.Invoke[*services.ServiceCategory](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	categories, err := serviceCategory.ListCategories(c.Request().Context())
	if err != nil {
		return httpx.RestAbort(c, nil, wrapError(err))
	}

	return httpx.RestAbort(c, categories, nil)
}

func (gr *groupCategory) MergeCandidates(c echo.Context) error {
	serviceCategory, err := do.Invoke[*services.ServiceCategory](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	categories, err := serviceCategory.MergeCandidates(c.Request().Context())
	if err != nil {
		return httpx.RestAbort(c, nil, wrapError(err))
	}

	return httpx.RestAbort(c, categories, nil)
}

func (gr *groupCategory) Questions(c echo.Context) error {
	serviceCategory, err := do.Invoke[*services.ServiceCategory](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	questions, err := serviceCategory.ResolveQuestions(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpx.RestAbort(c, nil, wrapError(err))
	}

	return httpx.RestAbort(c, questions, nil)
}

func (gr *groupCategory) Create(c echo.Context) error {
	ctx := c.Request().Context()

	caller, err := ResolveCaller(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var req createCategoryRequest
	if err := bind(c, &req); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceCategory, err := do.Invoke[*services.ServiceCategory](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	data := req.CategoryData
	data.Name = req.Name
	category, err := serviceCategory.CreateCategory(ctx, caller, data)
	if err != nil {
		return httpx.RestAbort(c, nil, wrapError(err))
	}

	return httpx.RestAbort(c, category, nil)
}

func (gr *groupCategory) Update(c echo.Context) error {
	ctx := c.Request().Context()

	caller, err := ResolveCaller(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var patch models.CategoryPatch
	if err := bind(c, &patch); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceCategory, err := do.Invoke[*services.ServiceCategory](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	category, err := serviceCategory.UpdateCategory(ctx, caller, c.Param("id"), patch)
	if err != nil {
		return httpx.RestAbort(c, nil, wrapError(err))
	}

	return httpx.RestAbort(c, category, nil)
}

func (gr *groupCategory) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	caller, err := ResolveCaller(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceCategory, err := do.Invoke[*services.ServiceCategory](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	deleted, err := serviceCategory.DeleteCategory(ctx, caller, c.Param("id"))
	if err != nil {
		return httpx.RestAbort(c, nil, wrapError(err))
	}

	return httpx.RestAbort(c, map[string]interface{}{
		"deletedQuestions": deleted,
	}, nil)
}

func (gr *groupCategory) Merge(c echo.Context) error {
	ctx := c.Request().Context()

	caller, err := ResolveCaller(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var req mergeCategoriesRequest
	if err := bind(c, &req); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceCategory, err := do.Invoke[*services.ServiceCategory](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	category, err := serviceCategory.MergeCategories(ctx, caller, req.Name, req.SourceCategoryIDs, req.CategoryData)
	if err != nil {
		return httpx.RestAbort(c, nil, wrapError(err))
	}

	return httpx.RestAbort(c, category, nil)
}

type groupDataVersion struct {
	container *do.Injector
}

func (gr *groupDataVersion) Get(c echo.Context) error {
	serviceDataVersion, err := do.Invoke[*services.ServiceDataVersion](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	version, err := serviceDataVersion.GetDataVersion(c.Request().Context())
	if err != nil {
		return httpx.RestAbort(c, nil, wrapError(err))
	}

	return httpx.RestAbort(c, map[string]interface{}{
		"version": version,
	}, nil)
}
