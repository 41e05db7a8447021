package restserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/chrissnell/windshear/internal/observability"
	"github.com/chrissnell/windshear/pkg/field"
	"github.com/chrissnell/windshear/pkg/shear"
)

const maxRequestBytes = 8 << 20

func (c *Controller) handleWindShear(w http.ResponseWriter, req *http.Request) {
	var body WindShearRequest
	if err := c.decode(w, req, &body); err != nil {
		c.fail(w, req, observability.CalculatorTotal, http.StatusBadRequest, err)
		return
	}
	if m := body.missing(); m != "" {
		c.fail(w, req, observability.CalculatorTotal, http.StatusBadRequest, fmt.Errorf("missing %s", m))
		return
	}

	start := time.Now()
	res, err := c.calculator.WindShearDetail(*body.UTop, *body.UBtm, *body.VTop, *body.VBtm, *body.Dz)
	if err != nil {
		c.fail(w, req, observability.CalculatorTotal, statusFor(err), err)
		return
	}
	c.metrics.ObserveShear(observability.CalculatorTotal, res.Selection, time.Since(start))

	c.respond(w, req, newShearResponse(requestID(req), res))
}

func (c *Controller) handleWindShearNormal(w http.ResponseWriter, req *http.Request) {
	var body WindShearNormalRequest
	if err := c.decode(w, req, &body); err != nil {
		c.fail(w, req, observability.CalculatorNormal, http.StatusBadRequest, err)
		return
	}
	if m := body.missing(); m != "" {
		c.fail(w, req, observability.CalculatorNormal, http.StatusBadRequest, fmt.Errorf("missing %s", m))
		return
	}

	start := time.Now()
	res, err := c.calculator.WindShearNormalDetail(*body.UTop, *body.UBtm, *body.VTop, *body.VBtm, *body.CosA, *body.SinA, *body.Dz)
	if err != nil {
		c.fail(w, req, observability.CalculatorNormal, statusFor(err), err)
		return
	}
	c.metrics.ObserveShear(observability.CalculatorNormal, res.Selection, time.Since(start))

	c.respond(w, req, newShearResponse(requestID(req), res))
}

func (c *Controller) handleEnhancementFactor(w http.ResponseWriter, req *http.Request) {
	var body EnhancementRequest
	if err := c.decode(w, req, &body); err != nil {
		c.fail(w, req, observability.CalculatorEnhancement, http.StatusBadRequest, err)
		return
	}
	if m := body.missing(); m != "" {
		c.fail(w, req, observability.CalculatorEnhancement, http.StatusBadRequest, fmt.Errorf("missing %s", m))
		return
	}

	start := time.Now()
	factor := shear.EnhancementFactor(*body.ContrailDepth, *body.EffectiveVerticalResolution, *body.Exponent)
	c.metrics.ObserveEnhancement(time.Since(start))

	c.respond(w, req, EnhancementResponse{
		RequestID:         requestID(req),
		EnhancementFactor: factor,
	})
}

func (c *Controller) handleHealth(w http.ResponseWriter, req *http.Request) {
	c.respond(w, req, HealthResponse{Status: "ok"})
}

func (c *Controller) decode(w http.ResponseWriter, req *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (c *Controller) respond(w http.ResponseWriter, req *http.Request, data any) {
	if err := c.formatter.WriteResponse(w, req, http.StatusOK, data); err != nil {
		c.logger.Errorf("error writing response for request %s: %v", requestID(req), err)
	}
}

func (c *Controller) fail(w http.ResponseWriter, req *http.Request, calculator string, status int, err error) {
	c.metrics.ObserveError(calculator)
	c.logger.Debugw("request rejected", "request_id", requestID(req), "calculator", calculator, "error", err)
	if werr := c.formatter.WriteError(w, req, status, err.Error()); werr != nil {
		c.logger.Errorf("error writing error response for request %s: %v", requestID(req), werr)
	}
}

// statusFor maps calculation errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, field.ErrShapeMismatch),
		errors.Is(err, field.ErrEmpty),
		errors.Is(err, field.ErrTooLarge),
		errors.Is(err, field.ErrUninitialized):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
