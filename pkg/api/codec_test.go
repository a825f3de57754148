package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec(t *testing.T) {
	codec := Codec{}
	assert.Equal(t, "json", codec.Name())

	data, err := codec.Marshal(&CancelDebtRequest{GroupID: "g1", From: "B", To: "A", Amount: 30})
	require.NoError(t, err)
	assert.JSONEq(t, `{"group_id":"g1","from":"B","to":"A","amount":30}`, string(data))

	var req CancelDebtRequest
	require.NoError(t, codec.Unmarshal(data, &req))
	assert.Equal(t, "B", req.From)
	assert.Equal(t, 30.0, req.Amount)

	var empty ListGroupsRequest
	assert.NoError(t, codec.Unmarshal(nil, &empty))
	assert.Error(t, codec.Unmarshal([]byte("{"), &req))
}
