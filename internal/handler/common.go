package handler

import (
    "errors"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/swan-prince/booking-server/internal/model"
)

// getActor reconstructs the acting user from the claims stored in the
// context by the JWT middleware.  The subject claim may arrive as a
// string or a JSON number depending on the issuer, so both are accepted.
func getActor(c echo.Context) (model.Actor, error) {
    id, err := getUserID(c)
    if err != nil {
        return model.Actor{}, err
    }
    role, _ := c.Get("role").(string)
    return model.Actor{ID: id, Staff: role == "STAFF"}, nil
}

// getUserID extracts the user_id from echo.Context and converts it to
// uint64.
func getUserID(c echo.Context) (uint64, error) {
    switch t := c.Get("user_id").(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("missing or invalid user id")
}
