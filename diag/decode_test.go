package diag_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/mrfvalidator/diag"
	"github.com/reoring/mrfvalidator/internal/jsonout"
)

const rapidTree = `{
    "type": {
        "expected": ["string", "null"],
        "actual": "integer",
        "errorCode": 20,
        "instanceRef": "#/last_updated_on",
        "schemaRef": "#/properties/last_updated_on"
    },
    "anyOf": {
        "errorCode": 24,
        "instanceRef": "#/in_network/0",
        "schemaRef": "#/definitions/in_network",
        "errors": [
            {"required": {"missing": ["billing_code"], "errorCode": 15, "instanceRef": "#/in_network/0", "schemaRef": "#/definitions/in_network/anyOf/0"}},
            {"minimum": [
                {"actual": 0.5, "expected": 1, "errorCode": 4, "instanceRef": "#/in_network/0/n", "schemaRef": "#/x"},
                {}
            ]}
        ]
    },
    "dependencies": {
        "errorCode": 18,
        "instanceRef": "#",
        "schemaRef": "#",
        "errors": {"address": {"required": {"missing": ["street"], "errorCode": 15, "instanceRef": "#", "schemaRef": "#/dependencies/address"}}}
    }
}`

func TestReadTree(t *testing.T) {
	node, err := diag.ReadTree(strings.NewReader(rapidTree))
	require.NoError(t, err)
	require.Len(t, node.Members, 3)
	assert.Equal(t, []string{"type", "anyOf", "dependencies"}, []string{node.Members[0].Rule, node.Members[1].Rule, node.Members[2].Rule})

	typ := node.Members[0].Records[0]
	assert.Equal(t, diag.CodeType, typ.Code)
	assert.Equal(t, []diag.Param{
		{Name: "expected", Value: []any{"string", "null"}},
		{Name: "actual", Value: "integer"},
	}, typ.Params)

	anyOf := node.Members[1].Records[0]
	require.Len(t, anyOf.Children.Nodes, 2)
	minimum := anyOf.Children.Nodes[1].Members[0]
	assert.True(t, minimum.Many)
	require.Len(t, minimum.Records, 2)
	assert.Equal(t, json.Number("0.5"), minimum.Records[0].Params[0].Value)
	assert.True(t, minimum.Records[1].Empty())

	deps := node.Members[2].Records[0]
	require.True(t, deps.Children.IsKeyed())
	assert.Equal(t, "address", deps.Children.Keyed[0].Key)

	msgs := diag.Collect(diag.Flatten(node, ""))
	require.Len(t, msgs, 6)
	assert.Equal(t, "Property has a type 'integer' that is not in the following list: 'string,null'.", msgs[0].Message)
	assert.Equal(t, "Number '0.5' is less than the 'minimum' value '1'.", msgs[3].Message)
	assert.Equal(t, "anyOf", msgs[3].Context)
	assert.Equal(t, "Object is missing the following members required by the schema: 'street'.", msgs[5].Message)
	assert.Equal(t, "dependencies", msgs[5].Context)
}

func TestWriteTree_RoundTrip(t *testing.T) {
	node, err := diag.ReadTree(strings.NewReader(rapidTree))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, diag.WriteTree(&buf, node, jsonout.Default))
	again, err := diag.ReadTree(&buf)
	require.NoError(t, err)
	assert.Equal(t, node, again)

	var a, b any
	require.NoError(t, json.Unmarshal([]byte(rapidTree), &a))
	buf.Reset()
	require.NoError(t, diag.WriteTree(&buf, node, jsonout.Options{}))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &b))
	assert.Equal(t, a, b)
}

func TestWriteTree_Layout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, diag.WriteTree(&buf, oneOfTree(), jsonout.Options{}))
	assert.Equal(t,
		`{"oneOf":{"errorCode":21,"instanceRef":"#/x","schemaRef":"#/properties/x","errors":[`+
			`{"type":{"errorCode":20,"instanceRef":"#/x","schemaRef":"#/properties/x/oneOf/0","expected":["string"],"actual":"integer"}}]}}`,
		buf.String())
}

func TestReadTree_Malformed(t *testing.T) {
	for _, doc := range []string{
		`[]`,
		`{"type": 3}`,
		`{"type": {"errorCode": "x"}}`,
		`{"type": {"errorCode": 20, "errors": 1}}`,
		`{"type": [1]}`,
		`{"type": {`,
	} {
		_, err := diag.ReadTree(strings.NewReader(doc))
		assert.Error(t, err, doc)
	}
	_, err := diag.ReadTree(strings.NewReader(`{"type": 3}`))
	assert.ErrorIs(t, err, diag.ErrMalformedTree)
}
