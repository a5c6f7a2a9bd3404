package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeExport_Array(t *testing.T) {
	docs, err := decodeExport([]byte(`[
  {"_id":{"$oid":"65f1c0ffee0000000000beef"},"name":"Asha","packages":["quick"],"car":"sedan",
   "price":399,"waterPower":true,"status":"completed","createdAt":{"$date":"2024-11-02T09:30:00.000Z"}}
]`))
	require.NoError(t, err)
	require.Len(t, docs, 1)

	b := docs[0].booking()
	assert.Equal(t, "65f1c0ffee0000000000beef", b.ID)
	assert.Equal(t, "completed", b.Status)
	assert.True(t, b.WaterPower)
	assert.True(t, b.CreatedAt.Equal(time.Date(2024, 11, 2, 9, 30, 0, 0, time.UTC)))
}

func TestDecodeExport_Lines(t *testing.T) {
	docs, err := decodeExport([]byte(
		`{"_id":"a","name":"One","createdAt":{"$date":1730539800000}}` + "\n\n" +
			`{"_id":"b","name":"Two","createdAt":"2024-11-02T09:30:00Z"}`))
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].booking().ID)
	assert.Equal(t, int64(1730539800), docs[0].booking().CreatedAt.Unix())
	assert.Equal(t, "Two", docs[1].Name)

	_, err = decodeExport([]byte("{\"_id\":\"a\"}\n{broken"))
	assert.ErrorContains(t, err, "line 2")
}
