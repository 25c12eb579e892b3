package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/emptypb"
)

func TestCodecPlainStruct(t *testing.T) {
	c := Codec()
	assert.Equal(t, "json", c.Name())

	data, err := c.Marshal(&SendMessageRequest{ChannelID: "c1", Body: "hi"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"channelId":"c1","body":"hi","threadParentId":""}`, string(data))

	var got SendMessageRequest
	require.NoError(t, c.Unmarshal(data, &got))
	assert.Equal(t, "c1", got.ChannelID)
}

func TestCodecEmptyBody(t *testing.T) {
	var req ListGroupsRequest
	assert.NoError(t, Codec().Unmarshal(nil, &req))
}

func TestCodecProtoMessage(t *testing.T) {
	c := Codec()
	data, err := c.Marshal(&emptypb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	var empty emptypb.Empty
	assert.NoError(t, c.Unmarshal([]byte(`{"ignored":1}`), &empty))
}

func TestCodecRejectsGarbage(t *testing.T) {
	var req SendMessageRequest
	assert.Error(t, Codec().Unmarshal([]byte("{"), &req))
}
