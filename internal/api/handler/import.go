package handler

import (
	"errors"
	"io"

	"lamah/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupImport struct {
	container *do.Injector
}

type importRequest struct {
	Text string `json:"text" validate:"required"`
}

func (gr *groupImport) Import(c echo.Context) error {
	return gr.importText(c, false)
}

func (gr *groupImport) ImportForced(c echo.Context) error {
	return gr.importText(c, true)
}

func (gr *groupImport) importText(c echo.Context, force bool) error {
	ctx := c.Request().Context()

	caller, err := ResolveCaller(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var req importRequest
	if err := bind(c, &req); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceImport, err := do.Invoke[*services.ServiceImport](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	importer := serviceImport.ImportBulk
	if force {
		importer = serviceImport.ImportBulkForced
	}
	summary, err := importer(ctx, caller, req.Text, nil)
	if err != nil {
		return httpx.RestAbort(c, nil, wrapError(err))
	}

	return httpx.RestAbort(c, summary, nil)
}

// ImportArchive takes a zip upload in the "file" field holding one sheet and
// its media files.
func (gr *groupImport) ImportArchive(c echo.Context) error {
	ctx := c.Request().Context()

	caller, err := ResolveCaller(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	categoryName := c.FormValue("category")
	if categoryName == "" {
		return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("missing category"), errorx.Validation))
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}
	file, err := fileHeader.Open()
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	serviceImport, err := do.Invoke[*services.ServiceImport](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	summary, err := serviceImport.ImportArchive(ctx, caller, data, categoryName, nil)
	if err != nil {
		return httpx.RestAbort(c, nil, wrapError(err))
	}

	return httpx.RestAbort(c, summary, nil)
}

func (gr *groupImport) Status(c echo.Context) error {
	ctx := c.Request().Context()

	caller, err := ResolveCaller(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceImport, err := do.Invoke[*services.ServiceImport](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	status, err := serviceImport.GetImportStatus(ctx, caller, c.Param("run"))
	if err != nil {
		return httpx.RestAbort(c, nil, wrapError(err))
	}

	return httpx.RestAbort(c, status, nil)
}
