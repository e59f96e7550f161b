package activities_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/sgdea/go-planner-client/activities"
	"github.com/sgdea/go-planner-client/client"
	"github.com/stretchr/testify/require"
)

// fakeAPI records the calls the service makes and plays back canned
// responses, keeping these tests free of HTTP.
type fakeAPI struct {
	lastMethod   string
	lastResource string
	lastSlug     string
	lastPayload  any
	response     any
	err          error
}

func (f *fakeAPI) respond(out any) error {
	if f.err != nil {
		return f.err
	}
	if out == nil || f.response == nil {
		return nil
	}
	data, err := json.Marshal(f.response)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (f *fakeAPI) Get(_ context.Context, resource, slug string, out any) error {
	f.lastMethod, f.lastResource, f.lastSlug = "GET", resource, slug
	return f.respond(out)
}

func (f *fakeAPI) Query(_ context.Context, resource string, _ url.Values, out any) error {
	f.lastMethod, f.lastResource = "QUERY", resource
	return f.respond(out)
}

func (f *fakeAPI) Post(_ context.Context, resource string, payload, out any) error {
	f.lastMethod, f.lastResource, f.lastPayload = "POST", resource, payload
	return f.respond(out)
}

func (f *fakeAPI) Update(_ context.Context, resource, slug string, payload, out any) error {
	f.lastMethod, f.lastResource, f.lastSlug, f.lastPayload = "PUT", resource, slug, payload
	return f.respond(out)
}

func (f *fakeAPI) Patch(_ context.Context, resource string, payload, out any) error {
	f.lastMethod, f.lastResource, f.lastPayload = "PATCH", resource, payload
	return f.respond(out)
}

func (f *fakeAPI) Delete(_ context.Context, resource string) error {
	f.lastMethod, f.lastResource = "DELETE", resource
	return f.err
}

func validActivity() activities.Activity {
	return activities.Activity{
		Title:        "Parcial de cálculo",
		TypeActivity: "exam",
		Subject:      "Cálculo II",
		User:         7,
	}
}

func TestServiceCreate(t *testing.T) {
	t.Run("posts a valid activity", func(t *testing.T) {
		api := &fakeAPI{response: activities.Activity{ID: 11, Title: "Parcial de cálculo"}}
		svc := activities.NewService(api)

		created, err := svc.Create(context.Background(), validActivity())
		require.NoError(t, err)
		require.Equal(t, int64(11), created.ID)
		require.Equal(t, "POST", api.lastMethod)
		require.Equal(t, activities.Endpoint, api.lastResource)
	})

	t.Run("missing required fields never reach the wire", func(t *testing.T) {
		api := &fakeAPI{}
		svc := activities.NewService(api)

		_, err := svc.Create(context.Background(), activities.Activity{User: 7})
		apiErr, ok := client.AsAPIError(err)
		require.True(t, ok)
		require.True(t, apiErr.IsValidation())
		require.Contains(t, apiErr.Fields, "Title")
		require.Contains(t, apiErr.Fields, "TypeActivity")
		require.Contains(t, apiErr.Fields, "Subject")
		require.Empty(t, api.lastMethod)
	})

	t.Run("missing user id is rejected", func(t *testing.T) {
		svc := activities.NewService(&fakeAPI{})
		a := validActivity()
		a.User = 0

		_, err := svc.Create(context.Background(), a)
		apiErr, ok := client.AsAPIError(err)
		require.True(t, ok)
		require.Contains(t, apiErr.Fields, "User")
	})
}

func TestServiceReads(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		api := &fakeAPI{response: []activities.Activity{{ID: 1}, {ID: 2}}}
		svc := activities.NewService(api)

		all, err := svc.List(context.Background())
		require.NoError(t, err)
		require.Len(t, all, 2)
		require.Equal(t, activities.Endpoint, api.lastResource)
	})

	t.Run("get by id", func(t *testing.T) {
		api := &fakeAPI{response: activities.Activity{ID: 3, Title: "Taller"}}
		svc := activities.NewService(api)

		got, err := svc.Get(context.Background(), 3)
		require.NoError(t, err)
		require.Equal(t, "Taller", got.Title)
		require.Equal(t, "3", api.lastSlug)
	})

	t.Run("backend error passes through", func(t *testing.T) {
		api := &fakeAPI{err: &client.APIError{Status: http.StatusNotFound}}
		svc := activities.NewService(api)

		_, err := svc.Get(context.Background(), 99)
		require.True(t, client.IsStatus(err, http.StatusNotFound))
	})
}

func TestServiceUpdateAndDelete(t *testing.T) {
	t.Run("update requires an id", func(t *testing.T) {
		svc := activities.NewService(&fakeAPI{})
		_, err := svc.Update(context.Background(), validActivity())
		require.True(t, client.IsStatus(err, http.StatusBadRequest))
	})

	t.Run("update puts to the slug", func(t *testing.T) {
		api := &fakeAPI{response: activities.Activity{ID: 5}}
		svc := activities.NewService(api)
		a := validActivity()
		a.ID = 5

		_, err := svc.Update(context.Background(), a)
		require.NoError(t, err)
		require.Equal(t, "PUT", api.lastMethod)
		require.Equal(t, "5", api.lastSlug)
	})

	t.Run("patch targets the item path", func(t *testing.T) {
		api := &fakeAPI{response: activities.Activity{ID: 5}}
		svc := activities.NewService(api)

		_, err := svc.Patch(context.Background(), 5, map[string]any{"grade": 4.5})
		require.NoError(t, err)
		require.Equal(t, "/activities/5/", api.lastResource)
	})

	t.Run("delete targets the item path", func(t *testing.T) {
		api := &fakeAPI{}
		svc := activities.NewService(api)

		require.NoError(t, svc.Delete(context.Background(), 5))
		require.Equal(t, "DELETE", api.lastMethod)
		require.Equal(t, "/activities/5/", api.lastResource)
	})
}

func TestServiceSubActivities(t *testing.T) {
	t.Run("list under the parent", func(t *testing.T) {
		api := &fakeAPI{response: []activities.SubActivity{{ID: 1, Activity: 5}}}
		svc := activities.NewService(api)

		subs, err := svc.SubActivities(context.Background(), 5)
		require.NoError(t, err)
		require.Len(t, subs, 1)
		require.Equal(t, "/activities/5/subactivities/", api.lastResource)
	})

	t.Run("create validates before posting", func(t *testing.T) {
		api := &fakeAPI{}
		svc := activities.NewService(api)

		_, err := svc.CreateSubActivity(context.Background(), activities.SubActivity{Activity: 5})
		apiErr, ok := client.AsAPIError(err)
		require.True(t, ok)
		require.Contains(t, apiErr.Fields, "Title")
		require.Empty(t, api.lastMethod)
	})

	t.Run("create posts under the parent", func(t *testing.T) {
		api := &fakeAPI{response: activities.SubActivity{ID: 9, Activity: 5}}
		svc := activities.NewService(api)

		sub, err := svc.CreateSubActivity(context.Background(), activities.SubActivity{Activity: 5, Title: "Leer capítulo 3"})
		require.NoError(t, err)
		require.Equal(t, int64(9), sub.ID)
		require.Equal(t, "/activities/5/subactivities/", api.lastResource)
	})

	t.Run("delete targets the item", func(t *testing.T) {
		api := &fakeAPI{}
		svc := activities.NewService(api)

		require.NoError(t, svc.DeleteSubActivity(context.Background(), 5, 9))
		require.Equal(t, "/activities/5/subactivities/9/", api.lastResource)
	})
}
