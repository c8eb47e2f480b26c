package test

import (
	"encoding/json"
	"testing"

	"cohort-checkin/internal/global/response"

	"github.com/stretchr/testify/require"
)

func ErrorEqual(t *testing.T, expected *response.Error, resp response.Body) {
	t.Helper()
	require.Equal(t, expected.Code, resp.Code, resp.Msg)
}

func NoError(t *testing.T, resp response.Body) {
	t.Helper()
	require.Equal(t, int32(0), resp.Code, resp.Msg)
}

// DecodeData 把 Data 重新解码为具体类型
func DecodeData[T any](t *testing.T, resp response.Body) T {
	t.Helper()
	var out T
	b, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}
