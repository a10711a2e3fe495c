package handlers_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/caio/vmfleet/internal/api/handlers"
	"github.com/caio/vmfleet/internal/domain"
	"github.com/caio/vmfleet/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthFlow(t *testing.T) {
	ts := testutil.NewTestServer(t)

	// Login URL is public
	resp, err := http.Get(ts.Server.URL + "/api/v1/auth/discord/url")
	require.NoError(t, err)
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var urlResp handlers.LoginURLResponse
	testutil.AssertJSONResponse(t, resp, &urlResp)
	assert.NotEmpty(t, urlResp.URL)
	assert.NotEmpty(t, urlResp.State)

	// Callback logs in and hands back tokens
	user := testutil.NewUserBuilder().WithID("u-1").WithUsername("tester").Build(t, ts.Repos)
	token := ts.Login(t, user)
	require.NotEmpty(t, token)

	// The token works against /me
	meResp := ts.DoJSON(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	defer meResp.Body.Close()
	testutil.AssertStatusCode(t, meResp, http.StatusOK)

	var me handlers.UserResponse
	testutil.AssertJSONResponse(t, meResp, &me)
	assert.Equal(t, "u-1", me.ID)
	assert.Equal(t, "client", me.Role)

	// Logout succeeds
	outResp := ts.DoJSON(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	defer outResp.Body.Close()
	testutil.AssertStatusCode(t, outResp, http.StatusOK)
}

func TestAuth_RequiresToken(t *testing.T) {
	ts := testutil.NewTestServer(t)

	for _, path := range []string{"/api/v1/auth/me", "/api/v1/vms", "/api/v1/users"} {
		resp := ts.DoJSON(t, http.MethodGet, path, "", nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "path %s must require auth", path)
	}

	resp := ts.DoJSON(t, http.MethodGet, "/api/v1/vms", "garbage-token", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestVMList_Visibility(t *testing.T) {
	ts := testutil.NewTestServer(t)

	admin := testutil.NewUserBuilder().WithID("admin-1").WithRole(domain.RoleAdmin).Build(t, ts.Repos)
	client := testutil.NewUserBuilder().WithID("u-9").
		WithGrant("vm-1", testutil.BaseTime.Add(5*24*time.Hour)).
		Build(t, ts.Repos)
	testutil.NewVMBuilder().WithID("vm-1").WithOwner(client.ID).Build(t, ts.Repos)
	testutil.NewVMBuilder().WithID("vm-2").Build(t, ts.Repos)

	adminToken := ts.Login(t, admin)
	clientToken := ts.Login(t, client)

	// Admin sees the whole fleet
	resp := ts.DoJSON(t, http.MethodGet, "/api/v1/vms", adminToken, nil)
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var adminVMs []domain.AnnotatedVM
	testutil.AssertJSONResponse(t, resp, &adminVMs)
	assert.Len(t, adminVMs, 2)

	// Client sees only the granted machine
	resp = ts.DoJSON(t, http.MethodGet, "/api/v1/vms", clientToken, nil)
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var clientVMs []domain.AnnotatedVM
	testutil.AssertJSONResponse(t, resp, &clientVMs)
	require.Len(t, clientVMs, 1)
	assert.Equal(t, "vm-1", clientVMs[0].ID)
}

func TestVMPower(t *testing.T) {
	ts := testutil.NewTestServer(t)

	admin := testutil.NewUserBuilder().WithID("admin-1").WithRole(domain.RoleAdmin).Build(t, ts.Repos)
	testutil.NewVMBuilder().WithID("vm-1").WithStatus(domain.VMStatusRunning).Build(t, ts.Repos)
	testutil.NewVMBuilder().WithID("vm-err").WithStatus(domain.VMStatusError).Build(t, ts.Repos)

	token := ts.Login(t, admin)

	resp := ts.DoJSON(t, http.MethodPost, "/api/v1/vms/vm-1/power", token, nil)
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var vm domain.VirtualMachine
	testutil.AssertJSONResponse(t, resp, &vm)
	assert.Equal(t, domain.VMStatusStopped, vm.Status)

	// Machines in error state cannot be controlled
	resp = ts.DoJSON(t, http.MethodPost, "/api/v1/vms/vm-err/power", token, nil)
	defer resp.Body.Close()
	testutil.AssertErrorResponse(t, resp, http.StatusConflict, "error state")

	// Unknown machine
	resp = ts.DoJSON(t, http.MethodPost, "/api/v1/vms/missing/power", token, nil)
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusNotFound)
}

func TestUserList_RequiresElevatedRole(t *testing.T) {
	ts := testutil.NewTestServer(t)

	client := testutil.NewUserBuilder().WithID("u-9").Build(t, ts.Repos)
	token := ts.Login(t, client)

	resp := ts.DoJSON(t, http.MethodGet, "/api/v1/users", token, nil)
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusForbidden)
}

func TestSetRole(t *testing.T) {
	ts := testutil.NewTestServer(t)

	founder := testutil.NewUserBuilder().WithID(testutil.FounderID).WithRole(domain.RoleFounder).Build(t, ts.Repos)
	admin := testutil.NewUserBuilder().WithID("admin-1").WithRole(domain.RoleAdmin).Build(t, ts.Repos)
	testutil.NewUserBuilder().WithID("u-2").Build(t, ts.Repos)

	founderToken := ts.Login(t, founder)
	adminToken := ts.Login(t, admin)

	// Admin may not promote to admin
	resp := ts.DoJSON(t, http.MethodPut, "/api/v1/users/u-2/role", adminToken, handlers.SetRoleRequest{Role: "admin"})
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusForbidden)

	// Founder may
	resp = ts.DoJSON(t, http.MethodPut, "/api/v1/users/u-2/role", founderToken, handlers.SetRoleRequest{Role: "admin"})
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	stored, err := ts.Repos.User.GetByID(context.Background(), "u-2")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, stored.Role)

	// Nobody touches the protected founder account
	resp = ts.DoJSON(t, http.MethodPut, "/api/v1/users/"+testutil.FounderID+"/role", founderToken, handlers.SetRoleRequest{Role: "client"})
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusForbidden)

	// Unknown role string
	resp = ts.DoJSON(t, http.MethodPut, "/api/v1/users/u-2/role", founderToken, handlers.SetRoleRequest{Role: "root"})
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusBadRequest)
}

func TestGrantLifecycleOverHTTP(t *testing.T) {
	ts := testutil.NewTestServer(t)

	admin := testutil.NewUserBuilder().WithID("admin-1").WithRole(domain.RoleAdmin).Build(t, ts.Repos)
	client := testutil.NewUserBuilder().WithID("u-9").Build(t, ts.Repos)
	testutil.NewVMBuilder().WithID("vm-3").Build(t, ts.Repos)

	adminToken := ts.Login(t, admin)
	clientToken := ts.Login(t, client)

	// Clients cannot assign, even to themselves
	resp := ts.DoJSON(t, http.MethodPost, "/api/v1/users/u-9/vms", clientToken, handlers.AssignVMRequest{VMID: "vm-3", DurationDays: 5})
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusForbidden)

	// Zero duration is rejected
	resp = ts.DoJSON(t, http.MethodPost, "/api/v1/users/u-9/vms", adminToken, handlers.AssignVMRequest{VMID: "vm-3", DurationDays: 0})
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusBadRequest)

	// Admin assigns for five days
	resp = ts.DoJSON(t, http.MethodPost, "/api/v1/users/u-9/vms", adminToken, handlers.AssignVMRequest{VMID: "vm-3", DurationDays: 5})
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	// Extension with a past date fails
	resp = ts.DoJSON(t, http.MethodPut, "/api/v1/users/u-9/vms/vm-3", adminToken, handlers.ExtendVMRequest{ExpiresAt: testutil.BaseTime.Add(-time.Hour)})
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusBadRequest)

	// Extension into the future succeeds
	resp = ts.DoJSON(t, http.MethodPut, "/api/v1/users/u-9/vms/vm-3", adminToken, handlers.ExtendVMRequest{ExpiresAt: testutil.BaseTime.AddDate(0, 0, 30)})
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	// Revoke, then revoke again: both succeed
	resp = ts.DoJSON(t, http.MethodDelete, "/api/v1/users/u-9/vms/vm-3", adminToken, nil)
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	resp = ts.DoJSON(t, http.MethodDelete, "/api/v1/users/u-9/vms/vm-3", adminToken, nil)
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	// Extending the revoked grant reports it missing
	resp = ts.DoJSON(t, http.MethodPut, "/api/v1/users/u-9/vms/vm-3", adminToken, handlers.ExtendVMRequest{ExpiresAt: testutil.BaseTime.AddDate(0, 0, 30)})
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusNotFound)
}
