package customer

import (
	"bytes"
	"net/url"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/zhongyue-admin/zhongyue-admin/internal/db/controller/locationscope"
	"github.com/zhongyue-admin/zhongyue-admin/internal/db/models"
	"github.com/zhongyue-admin/zhongyue-admin/internal/web/handler/handlertest"
)

func setup(t *testing.T) *handlertest.Env {
	t.Helper()

	env := handlertest.New(t)

	var s Service
	s.Init(env.App, env.Cfg, env.DB, env.Auth)

	return env
}

func seed(t *testing.T, env *handlertest.Env, rows ...models.Customer) []models.Customer {
	t.Helper()

	require.NoError(t, env.DB.Create(&rows).Error)

	return rows
}

func idPath(action string, id uint64) string {
	return Path + "/" + action + "/" + strconv.FormatUint(id, 10)
}

func TestLocationScope(t *testing.T) {
	env := setup(t)

	manager := env.Role(t, "雄安负责人", "xiongan", "customer_data_view_by_location")
	scopes := locationscope.Settings{Scopes: map[string]string{"雄安负责人": "雄安"}}
	require.NoError(t, scopes.Save(env.DB))

	u := env.User(t, "wang", nil, manager)

	seed(t, env,
		models.Customer{CompanyName: "甲", BusinessAddress: "河北省雄安新区容城县", Submitter: "li"},
		models.Customer{CompanyName: "乙", BusinessAddress: "雄安新区安新县", Submitter: "zhao"},
		models.Customer{CompanyName: "丙", BusinessAddress: "保定市", Submitter: "wang"},
	)

	resp := env.Do(t, fiber.MethodGet, Path+"/list", nil, u)
	require.Equal(t, fiber.StatusOK, resp.Status, string(resp.Body))

	list := handlertest.Decode[handlertest.List[models.Customer]](t, resp)
	assert.EqualValues(t, 2, list.Total)

	names := []string{}
	for _, c := range list.List {
		names = append(names, c.CompanyName)
	}

	assert.Equal(t, []string{"乙", "甲"}, names)

	resp = env.Do(t, fiber.MethodGet, Path+"/list?bossName=&companyName="+url.QueryEscape("甲"), nil, u)
	require.Equal(t, fiber.StatusOK, resp.Status)
	assert.EqualValues(t, 1, handlertest.Decode[handlertest.List[models.Customer]](t, resp).Total)
}

func TestCRUD(t *testing.T) {
	env := setup(t)
	u := env.User(t, "wang", nil, env.Role(t, "客服", "service",
		"customer_data_view_own", "customer_action_create", "customer_action_edit", "customer_action_delete"))

	others := seed(t, env, models.Customer{CompanyName: "他人客户", Submitter: "li"})

	resp := env.Do(t, fiber.MethodPost, Path+"/create", map[string]interface{}{
		"company_name":       "雄安科技",
		"boss_name":          "张三",
		"registered_capital": "1000000",
		"establishment_date": "2020-05-01",
		"has_online_banking": true,
		"submitter":          "li",
	}, u)
	require.Equal(t, fiber.StatusCreated, resp.Status, string(resp.Body))

	created := handlertest.Decode[models.Customer](t, resp)
	assert.Equal(t, "wang", created.Submitter)
	assert.True(t, created.RegisteredCapital.Valid)
	assert.Equal(t, "1000000", created.RegisteredCapital.Decimal.String())

	resp = env.Do(t, fiber.MethodPost, Path+"/create", map[string]interface{}{"boss_name": "无名"}, u)
	assert.Equal(t, fiber.StatusBadRequest, resp.Status)

	resp = env.Do(t, fiber.MethodGet, idPath("detail", created.ID), nil, u)
	require.Equal(t, fiber.StatusOK, resp.Status)
	assert.Equal(t, "2020-05-01", handlertest.Decode[models.Customer](t, resp).EstablishmentDate.String())

	resp = env.Do(t, fiber.MethodGet, idPath("detail", others[0].ID), nil, u)
	assert.Equal(t, fiber.StatusNotFound, resp.Status)

	resp = env.Do(t, fiber.MethodPut, idPath("update", created.ID), map[string]interface{}{
		"tax_bureau": "雄安税务局",
		"submitter":  "li",
	}, u)
	require.Equal(t, fiber.StatusOK, resp.Status, string(resp.Body))

	updated := handlertest.Decode[models.Customer](t, resp)
	assert.Equal(t, "雄安税务局", updated.TaxBureau)
	assert.Equal(t, "雄安科技", updated.CompanyName)
	assert.Equal(t, "wang", updated.Submitter)
	assert.True(t, updated.HasOnlineBanking)

	resp = env.Do(t, fiber.MethodPut, idPath("update", others[0].ID), map[string]interface{}{"tax_bureau": "x"}, u)
	assert.Equal(t, fiber.StatusNotFound, resp.Status)

	resp = env.Do(t, fiber.MethodDelete, idPath("delete", created.ID), nil, u)
	require.Equal(t, fiber.StatusOK, resp.Status)

	resp = env.Do(t, fiber.MethodDelete, idPath("delete", created.ID), nil, u)
	assert.Equal(t, fiber.StatusNotFound, resp.Status)
}

func TestActionsRequired(t *testing.T) {
	env := setup(t)
	u := env.User(t, "wang", nil, env.Role(t, "只读", "readonly", "customer_data_view_all"))

	rows := seed(t, env, models.Customer{CompanyName: "甲", Submitter: "wang"})

	resp := env.Do(t, fiber.MethodPost, Path+"/create", map[string]interface{}{"company_name": "乙"}, u)
	assert.Equal(t, fiber.StatusForbidden, resp.Status)

	resp = env.Do(t, fiber.MethodPut, idPath("update", rows[0].ID), map[string]interface{}{}, u)
	assert.Equal(t, fiber.StatusForbidden, resp.Status)

	resp = env.Do(t, fiber.MethodDelete, idPath("delete", rows[0].ID), nil, u)
	assert.Equal(t, fiber.StatusForbidden, resp.Status)
}

func TestRelatedCustomers(t *testing.T) {
	env := setup(t)
	u := env.User(t, "wang", nil, env.Role(t, "客服", "service", "customer_data_view_all"))

	rows := seed(t, env,
		models.Customer{CompanyName: "甲", BossName: "张三"},
		models.Customer{CompanyName: "乙", BossName: "张三"},
		models.Customer{CompanyName: "丙", BossName: "李四"},
	)

	resp := env.Do(t, fiber.MethodGet, Path+"/related-customers?boss_name="+url.QueryEscape("张三"), nil, u)
	require.Equal(t, fiber.StatusOK, resp.Status)
	assert.Equal(t, []Related{
		{ID: rows[0].ID, CompanyName: "甲"},
		{ID: rows[1].ID, CompanyName: "乙"},
	}, handlertest.Decode[[]Related](t, resp))

	resp = env.Do(t, fiber.MethodGet, Path+"/related-customers?boss_name="+url.QueryEscape("王五"), nil, u)
	assert.Equal(t, fiber.StatusNotFound, resp.Status)

	resp = env.Do(t, fiber.MethodGet, Path+"/related-customers", nil, u)
	assert.Equal(t, fiber.StatusBadRequest, resp.Status)
}

func TestExport(t *testing.T) {
	env := setup(t)
	u := env.User(t, "wang", nil, env.Role(t, "客服", "service", "customer_data_view_own"))

	seed(t, env,
		models.Customer{CompanyName: "甲", Submitter: "wang", HasOnlineBanking: true},
		models.Customer{CompanyName: "乙", Submitter: "li"},
	)

	resp := env.Do(t, fiber.MethodGet, Path+"/export", nil, u)
	require.Equal(t, fiber.StatusOK, resp.Status)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), ExportFilename)

	f, err := excelize.OpenReader(bytes.NewReader(resp.Body))
	require.NoError(t, err)

	defer f.Close()

	rows, err := f.GetRows(ExportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "企业名称", rows[0][1])
	assert.Equal(t, "甲", rows[1][1])
	assert.Equal(t, "是", rows[1][28])
}

func TestAutocomplete(t *testing.T) {
	env := setup(t)
	u := env.User(t, "wang", nil, env.Role(t, "客服", "service", "customer_data_view_all"))

	seed(t, env,
		models.Customer{TaxBureau: "雄安税务局"},
		models.Customer{TaxBureau: "雄安税务局"},
		models.Customer{TaxBureau: "保定税务局"},
	)

	for _, field := range []string{"tax_bureau", "taxBureau"} {
		resp := env.Do(t, fiber.MethodGet, Path+"/autocomplete?field="+field+"&query="+url.QueryEscape("雄安"), nil, u)
		require.Equal(t, fiber.StatusOK, resp.Status, string(resp.Body))
		assert.Equal(t, []string{"雄安税务局"}, handlertest.Decode[[]string](t, resp))
	}

	resp := env.Do(t, fiber.MethodGet, Path+"/autocomplete?field=basic_bank_account", nil, u)
	assert.Equal(t, fiber.StatusBadRequest, resp.Status)
}
