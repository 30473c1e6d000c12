package handler // HTTP handlers of the hotel API

import (
    "errors"
    "fmt"
    "net/http"
    "reflect"
    "strconv"
    "strings"

    "github.com/go-playground/validator/v10"
    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/hotel-management/internal/service"
)

var validate = newValidator()

// newValidator reports fields by their json names.
func newValidator() *validator.Validate {
    v := validator.New()
    v.RegisterTagNameFunc(func(f reflect.StructField) string {
        name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
        if name == "-" {
            return ""
        }
        return name
    })
    return v
}

// HotelHandler serves the room, booking, customer, payment, statistics,
// report and record endpoints.
type HotelHandler struct {
    Svc *service.HotelService
    Log logrus.FieldLogger
}

// NewHotelHandler panics when svc is nil.
func NewHotelHandler(svc *service.HotelService, log logrus.FieldLogger) *HotelHandler {
    if svc == nil {
        panic("nil service passed to NewHotelHandler")
    }
    return &HotelHandler{Svc: svc, Log: log}
}

// statusOf maps a service failure to its HTTP status.
func statusOf(err error) int {
    switch service.KindOf(err) {
    case service.Validation:
        return http.StatusBadRequest
    case service.Conflict:
        return http.StatusConflict
    case service.NotFound:
        return http.StatusNotFound
    }
    return http.StatusInternalServerError
}

// fail answers {"error": message} keeping the service message intact.
func fail(c echo.Context, err error) error {
    return c.JSON(statusOf(err), echo.Map{"error": err.Error()})
}

func badRequest(c echo.Context, msg string) error {
    return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// respond writes v, or the mapped error when err is set.
func respond(c echo.Context, status int, v any, err error) error {
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(status, v)
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (int64, error) {
    id, err := strconv.ParseInt(c.Param(name), 10, 64)
    if err != nil || id <= 0 {
        return 0, fmt.Errorf("invalid %s", name)
    }
    return id, nil
}

// queryInt reads an optional integer query parameter.
func queryInt(c echo.Context, name string, def int) (int, error) {
    s := strings.TrimSpace(c.QueryParam(name))
    if s == "" {
        return def, nil
    }
    n, err := strconv.Atoi(s)
    if err != nil {
        return 0, fmt.Errorf("%s must be an integer", name)
    }
    return n, nil
}

func queryFloat(c echo.Context, name string, def float64) (float64, error) {
    s := strings.TrimSpace(c.QueryParam(name))
    if s == "" {
        return def, nil
    }
    f, err := strconv.ParseFloat(s, 64)
    if err != nil {
        return 0, fmt.Errorf("%s must be a number", name)
    }
    return f, nil
}

func queryBool(c echo.Context, name string, def bool) (bool, error) {
    s := strings.TrimSpace(c.QueryParam(name))
    if s == "" {
        return def, nil
    }
    b, err := strconv.ParseBool(s)
    if err != nil {
        return false, fmt.Errorf("%s must be true or false", name)
    }
    return b, nil
}

// bindValid binds the JSON body into dst and runs the struct validator.
func bindValid(c echo.Context, dst any) error {
    if err := c.Bind(dst); err != nil {
        return errors.New("invalid body")
    }
    if err := validate.Struct(dst); err != nil {
        var ve validator.ValidationErrors
        if errors.As(err, &ve) && len(ve) > 0 {
            return fmt.Errorf("%s failed on %s", ve[0].Field(), ve[0].Tag())
        }
        return err
    }
    return nil
}
