package handler

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePage(t *testing.T) {
	testCases := []struct {
		name  string
		query string
		want  Page
	}{
		{name: "defaults", query: "", want: Page{Number: 1, Size: 10}},
		{name: "snake case", query: "?page=3&page_size=20", want: Page{Number: 3, Size: 20}},
		{name: "camel case", query: "?currentPage=2&pageSize=5", want: Page{Number: 2, Size: 5}},
		{name: "clamped", query: "?page=0&page_size=1000", want: Page{Number: 1, Size: 100}},
		{name: "negative size", query: "?page_size=-1", want: Page{Number: 1, Size: 10}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()

			var got Page

			app.Get("/", func(c *fiber.Ctx) error {
				got = ParsePage(c)
				return nil
			})

			_, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/"+tc.query, nil))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	assert.Equal(t, 40, Page{Number: 5, Size: 10}.Offset())
}

func TestListEnvelope(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return List(c, []string{"a"}, 11, Page{Number: 2, Size: 10}, map[string]bool{"x": true})
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.JSONEq(t,
		`{"success":true,"data":{"list":["a"],"total":11,"currentPage":2,"pageSize":10,"permissions":{"x":true}}}`,
		string(body))
}

func TestValidationFailed(t *testing.T) {
	type input struct {
		Name string `json:"name" validate:"required"`
	}

	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		return ValidationFailed(c, validator.New().Struct(input{}))
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/", nil))
	require.NoError(t, err)

	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var env Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.False(t, env.Success)
	assert.Equal(t, "failed on required", env.Errors["Name"])
}
