package webserver

import (
	"bytes"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"stockwatch/chartview"
	"stockwatch/model"
	fiberhelpers "stockwatch/utils/fiberhelper"
	"stockwatch/utils/fiberhelper/response"
)

var errMissingCode = errors.New("instrument code is required")

type createSessionRequest struct {
	Code  string `json:"code"`
	Frame string `json:"frame"`
}

type changeInstrumentRequest struct {
	Code string `json:"code"`
}

type changeFrameRequest struct {
	Frame string `json:"frame"`
}

type movingAveragesResponse struct {
	MASettings model.MASettings `json:"maSettings"`
	Unknown    []string         `json:"unknown,omitempty"`
}

type dispatchResponse struct {
	Changed bool            `json:"changed"`
	State   chartview.State `json:"state"`
}

func (ws *WebServer) health(ctx *fiber.Ctx) error {
	return response.Ext{Ctx: ctx}.Ok(fiber.Map{"status": "ok", "sessions": ws.registry.Len()})
}

func (ws *WebServer) instrument(ctx *fiber.Ctx) error {
	instrument, err := ws.supplier.Instrument(ctx.UserContext(), ctx.Params("code"))
	if err != nil {
		return err
	}
	return response.Ext{Ctx: ctx}.Ok(instrument)
}

func (ws *WebServer) createSession(ctx *fiber.Ctx) error {
	req, err := fiberhelpers.RequestParse[createSessionRequest](ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(req.Code) == "" {
		return errMissingCode
	}
	frame, err := model.ParseTimeFrame(req.Frame)
	if err != nil {
		return err
	}

	s := ws.registry.Create()
	s.SetTimeFrame(frame)
	if err := ws.load(ctx.UserContext(), s, req.Code); err != nil {
		ws.registry.Delete(s.ID())
		return err
	}
	return response.Ext{Ctx: ctx}.Created(s.State())
}

func (ws *WebServer) getSession(ctx *fiber.Ctx) error {
	s, err := ws.session(ctx.Params("id"))
	if err != nil {
		return err
	}
	return response.Ext{Ctx: ctx}.Ok(s.State())
}

func (ws *WebServer) deleteSession(ctx *fiber.Ctx) error {
	if !ws.registry.Delete(ctx.Params("id")) {
		return ErrSessionNotFound
	}
	return response.Ext{Ctx: ctx}.NoContent()
}

func (ws *WebServer) changeInstrument(ctx *fiber.Ctx) error {
	s, err := ws.session(ctx.Params("id"))
	if err != nil {
		return err
	}
	req, err := fiberhelpers.RequestParse[changeInstrumentRequest](ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(req.Code) == "" {
		return errMissingCode
	}
	if err := ws.load(ctx.UserContext(), s, req.Code); err != nil {
		return err
	}
	return response.Ext{Ctx: ctx}.Ok(s.State())
}

func (ws *WebServer) changeFrame(ctx *fiber.Ctx) error {
	s, err := ws.session(ctx.Params("id"))
	if err != nil {
		return err
	}
	req, err := fiberhelpers.RequestParse[changeFrameRequest](ctx)
	if err != nil {
		return err
	}
	frame, err := model.ParseTimeFrame(req.Frame)
	if err != nil {
		return err
	}
	s.SetTimeFrame(frame)
	return response.Ext{Ctx: ctx}.Ok(s.State())
}

func (ws *WebServer) changeMovingAverages(ctx *fiber.Ctx) error {
	s, err := ws.session(ctx.Params("id"))
	if err != nil {
		return err
	}
	toggles, err := fiberhelpers.RequestParse[map[string]bool](ctx)
	if err != nil {
		return err
	}
	unknown := s.SetMovingAverages(toggles)
	return response.Ext{Ctx: ctx}.Ok(movingAveragesResponse{
		MASettings: s.State().MASettings,
		Unknown:    unknown,
	})
}

func (ws *WebServer) dispatch(ctx *fiber.Ctx) error {
	s, err := ws.session(ctx.Params("id"))
	if err != nil {
		return err
	}
	event, err := fiberhelpers.RequestParse[chartview.Event](ctx)
	if err != nil {
		return err
	}
	changed, err := s.Dispatch(event)
	if err != nil {
		return err
	}
	return response.Ext{Ctx: ctx}.Ok(dispatchResponse{Changed: changed, State: s.State()})
}

func (ws *WebServer) chartPNG(ctx *fiber.Ctx) error {
	s, err := ws.session(ctx.Params("id"))
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := s.RenderPNG(&buf, ctx.QueryInt("width"), ctx.QueryInt("height")); err != nil {
		return err
	}
	ctx.Set(fiber.HeaderCacheControl, "no-store")
	return response.Ext{Ctx: ctx}.Bytes("image/png", buf.Bytes())
}

func (ws *WebServer) echarts(ctx *fiber.Ctx) error {
	s, err := ws.session(ctx.Params("id"))
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := s.RenderPage(&buf); err != nil {
		return err
	}
	return response.Ext{Ctx: ctx}.Bytes(fiber.MIMETextHTMLCharsetUTF8, buf.Bytes())
}
