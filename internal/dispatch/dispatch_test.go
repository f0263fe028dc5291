package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/awsdeck/internal/log"
	"github.com/tombee/awsdeck/internal/protocol"
	"github.com/tombee/awsdeck/internal/registry"
	"github.com/tombee/awsdeck/internal/service"
	"github.com/tombee/awsdeck/internal/signer"
	"github.com/tombee/awsdeck/internal/transport"
)

type fakeResponse struct {
	status      int
	body        string
	contentType string
	err         error
}

// fakeTransport replays scripted responses and records every request.
type fakeTransport struct {
	mu        sync.Mutex
	requests  []*transport.Request
	responses []fakeResponse
}

func (f *fakeTransport) Execute(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	if len(f.responses) == 0 {
		return nil, errors.New("unexpected request")
	}
	r := f.responses[0]
	f.responses = f.responses[1:]
	if r.err != nil {
		return nil, r.err
	}

	status := r.status
	if status == 0 {
		status = 200
	}
	headers := map[string][]string{}
	if r.contentType != "" {
		headers["Content-Type"] = []string{r.contentType}
	}
	return &transport.Response{
		StatusCode: status,
		Headers:    headers,
		Body:       []byte(r.body),
		Metadata:   map[string]any{transport.MetadataAWSRequestID: "req-1"},
	}, nil
}

func (f *fakeTransport) Name() string                               { return "fake" }
func (f *fakeTransport) SetRateLimiter(limiter transport.RateLimiter) {}

func (f *fakeTransport) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

const widgetsYAML = `
resources:
  widgets:
    display_name: Widgets
    service: dynamodb
    sdk_method: list_widgets
    response_path: /Items
    id_field: Id
    name_field: label
    api_config:
      protocol: json
      action: ListWidgets
      pagination:
        input_token: StartToken
        output_token: NextToken
        page_size: Limit
        page_size_value: 2
    field_mappings:
      label:
        source: /Label
        default: unnamed
      size:
        source: /Bytes
        default: "-"
        transform: format_bytes
    action_configs:
      delete_widget:
        action_id: delete_widget
        protocol: json
        action: DeleteWidget
        body_template: '{"WidgetName": "{resource_id}"}'
        static_params:
          Force: true
    describe_config:
      action_id: describe_widget
      protocol: json
      action: DescribeWidget
      body_template: '{"WidgetName": "{resource_id}"}'
      response_root: /Widget
  gizmos:
    display_name: Gizmos
    service: dynamodb
    response_path: /Gizmos
    id_field: Id
    api_config:
      protocol: json
      action: ListGizmos
  nested:
    display_name: Nested
    service: dynamodb
    response_path: /Result/Items
    id_field: Id
    api_config:
      protocol: json
      action: ListNested
  orphans:
    display_name: Orphans
    service: nosuchservice
    response_path: /Items
    id_field: Id
    api_config:
      protocol: json
      action: ListOrphans
`

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

var testCreds = signer.Credentials{
	AccessKeyID:     "AKIDEXAMPLE",
	SecretAccessKey: "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY",
	Region:          "eu-west-1",
}

func newTestDispatcher(t *testing.T, reg *registry.Registry, ft *fakeTransport, opts ...Option) *Dispatcher {
	t.Helper()
	if reg == nil {
		var err error
		reg, err = registry.Load(registry.Source{Name: "widgets.yaml", Data: []byte(widgetsYAML)})
		require.NoError(t, err)
	}
	opts = append([]Option{WithClock(func() time.Time { return fixedTime }), WithLogger(log.Discard())}, opts...)
	return New(reg, service.Default(), ft, StaticCredentials(testCreds), opts...)
}

func embeddedRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.LoadEmbedded()
	require.NoError(t, err)
	return reg
}

func requestBody(t *testing.T, req *transport.Request) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(req.Body, &body))
	return body
}

func TestList_FollowsPaginationTokens(t *testing.T) {
	ft := &fakeTransport{responses: []fakeResponse{
		{body: `{"Items":[{"Id":"a","Label":"first"},{"Id":"b"}],"NextToken":"t1"}`},
		{body: `{"Items":[{"Id":"c","Bytes":1536}],"NextToken":"t2"}`},
		{body: `{"Items":[{"Id":"d"}],"NextToken":""}`},
	}}
	d := newTestDispatcher(t, nil, ft)

	records, err := d.ListAll(context.Background(), "widgets", "")
	require.NoError(t, err)

	require.Equal(t, 3, ft.calls(), "exactly one call per page")
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids)

	assert.Equal(t, "first", records[0].Name)
	assert.Equal(t, "unnamed", records[1].Name)
	assert.Equal(t, "1.5 KiB", records[2].Fields["size"])
	assert.Equal(t, "-", records[3].Fields["size"])

	first := requestBody(t, ft.requests[0])
	assert.NotContains(t, first, "StartToken")
	assert.Equal(t, float64(2), first["Limit"])
	assert.Equal(t, "t1", requestBody(t, ft.requests[1])["StartToken"])
	assert.Equal(t, "t2", requestBody(t, ft.requests[2])["StartToken"])

	req := ft.requests[0]
	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "https://dynamodb.eu-west-1.amazonaws.com/", req.URL)
	assert.Equal(t, "DynamoDB_20120810.ListWidgets", req.Headers["X-Amz-Target"])
	assert.True(t, strings.HasPrefix(req.Headers["Authorization"], "AWS4-HMAC-SHA256 Credential=AKIDEXAMPLE/20260301/eu-west-1/dynamodb/aws4_request"))
}

func TestPager_Next(t *testing.T) {
	ft := &fakeTransport{responses: []fakeResponse{
		{body: `{"Items":[{"Id":"a"}],"NextToken":"t1"}`},
		{body: `{"Items":[{"Id":"b"}]}`},
	}}
	d := newTestDispatcher(t, nil, ft)

	p := d.List(context.Background(), "widgets", "us-west-2")
	assert.Equal(t, 0, ft.calls(), "List is lazy")
	assert.False(t, p.Done())

	page, err := p.Next(context.Background())
	require.NoError(t, err)
	assert.Len(t, page, 1)
	assert.False(t, p.Done())
	assert.Equal(t, "https://dynamodb.us-west-2.amazonaws.com/", ft.requests[0].URL)

	page, err = p.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "b", page[0].ID)
	assert.True(t, p.Done(), "absent output token ends pagination")
	assert.Equal(t, 2, p.Page())

	page, err = p.Next(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, page)
	assert.Equal(t, 2, ft.calls())
}

func TestPager_PagesStopsOnBreak(t *testing.T) {
	ft := &fakeTransport{responses: []fakeResponse{
		{body: `{"Items":[{"Id":"a"}],"NextToken":"t1"}`},
		{body: `{"Items":[{"Id":"b"}],"NextToken":"t2"}`},
	}}
	d := newTestDispatcher(t, nil, ft)

	for records, err := range d.List(context.Background(), "widgets", "").Pages(context.Background()) {
		require.NoError(t, err)
		assert.Len(t, records, 1)
		break
	}
	assert.Equal(t, 1, ft.calls())
}

func TestPager_RepeatedTokenEndsPagination(t *testing.T) {
	ft := &fakeTransport{responses: []fakeResponse{
		{body: `{"Items":[{"Id":"a"}],"NextToken":"same"}`},
		{body: `{"Items":[{"Id":"b"}],"NextToken":"same"}`},
	}}
	d := newTestDispatcher(t, nil, ft)

	records, err := d.ListAll(context.Background(), "widgets", "")
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, 2, ft.calls())
}

func TestList_Errors(t *testing.T) {
	throttled := &transport.TransportError{Type: transport.ErrorTypeRateLimit, StatusCode: 400, Code: "ThrottlingException", Retryable: true}

	tests := []struct {
		name      string
		resource  string
		responses []fakeResponse
		wantIs    error
		wantCalls int
		check     func(t *testing.T, err error)
	}{
		{
			name:     "unknown resource",
			resource: "nope",
			wantIs:   ErrUnknownResource,
		},
		{
			name:     "unknown service",
			resource: "orphans",
			wantIs:   ErrUnknownService,
		},
		{
			name:      "missing response root",
			resource:  "widgets",
			responses: []fakeResponse{{body: `{"Other":[]}`}},
			wantIs:    ErrMissingResponseRoot,
			wantCalls: 1,
		},
		{
			name:      "transport error propagates",
			resource:  "widgets",
			responses: []fakeResponse{{err: throttled}},
			wantIs:    throttled,
			wantCalls: 1,
		},
		{
			name:      "malformed body",
			resource:  "widgets",
			responses: []fakeResponse{{body: `{"Items": [`}},
			wantIs:    protocol.ErrMalformed,
			wantCalls: 1,
		},
		{
			name:      "empty body",
			resource:  "widgets",
			responses: []fakeResponse{{body: ``}},
			wantIs:    protocol.ErrEmpty,
			wantCalls: 1,
		},
		{
			name:      "redirect status",
			resource:  "widgets",
			responses: []fakeResponse{{status: 301, body: `<Error><Code>PermanentRedirect</Code><Message>use the specified endpoint</Message></Error>`}},
			wantCalls: 1,
			check: func(t *testing.T, err error) {
				assert.NotErrorIs(t, err, ErrMissingResponseRoot)
				var te *transport.TransportError
				require.ErrorAs(t, err, &te)
				assert.Equal(t, "PermanentRedirect", te.Code)
				assert.Equal(t, 301, te.StatusCode)
			},
		},
		{
			name:      "unclassified error status",
			resource:  "widgets",
			responses: []fakeResponse{{status: 400, body: `{"__type":"ValidationException","message":"bad limit"}`}},
			wantCalls: 1,
			check: func(t *testing.T, err error) {
				var te *transport.TransportError
				require.ErrorAs(t, err, &te)
				assert.Equal(t, "ValidationException", te.Code)
				assert.Equal(t, transport.ErrorTypeClient, te.Type)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := &fakeTransport{responses: tt.responses}
			d := newTestDispatcher(t, nil, ft)

			p := d.List(context.Background(), tt.resource, "")
			records, err := p.Next(context.Background())
			require.Error(t, err)
			assert.Nil(t, records)
			assert.True(t, p.Done(), "a failed fetch ends the pager")
			assert.Equal(t, tt.wantCalls, ft.calls())

			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
			var de *Error
			require.ErrorAs(t, err, &de)
			assert.Equal(t, OpList, de.Op)
			assert.Equal(t, tt.resource, de.Resource)
			if tt.check != nil {
				tt.check(t, err)
			}
		})
	}
}

func TestList_QueryProtocol(t *testing.T) {
	ft := &fakeTransport{responses: []fakeResponse{{
		contentType: "text/xml;charset=UTF-8",
		body: `<?xml version="1.0" encoding="UTF-8"?>
<DescribeInstancesResponse xmlns="http://ec2.amazonaws.com/doc/2016-11-15/">
  <requestId>59dbff89-35bd-4eac-99ed-be587EXAMPLE</requestId>
  <reservationSet>
    <item>
      <reservationId>r-1</reservationId>
      <instancesSet>
        <item>
          <instanceId>i-0abc</instanceId>
          <instanceType>t3.micro</instanceType>
          <instanceState><code>16</code><name>running</name></instanceState>
          <ebsOptimized>true</ebsOptimized>
          <tagSet>
            <item><key>team</key><value>core</value></item>
            <item><key>Name</key><value>web-1</value></item>
          </tagSet>
        </item>
      </instancesSet>
    </item>
  </reservationSet>
</DescribeInstancesResponse>`,
	}}}
	d := newTestDispatcher(t, embeddedRegistry(t), ft)

	records, err := d.ListAll(context.Background(), "ec2-instances", "eu-west-1")
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "i-0abc", r.ID)
	assert.Equal(t, "web-1", r.Name)
	assert.Equal(t, "running", r.Fields["state"])
	assert.Equal(t, "t3.micro", r.Fields["type"])
	assert.Equal(t, "Yes", r.Fields["ebs_optimized"])
	assert.Equal(t, "team=core, Name=web-1", r.Fields["tags"])
	assert.Equal(t, "-", r.Fields["public_ip"])

	req := ft.requests[0]
	assert.Equal(t, "https://ec2.eu-west-1.amazonaws.com/", req.URL)
	form, err := url.ParseQuery(string(req.Body))
	require.NoError(t, err)
	assert.Equal(t, "DescribeInstances", form.Get("Action"))
	assert.Equal(t, "2016-11-15", form.Get("Version"))
	assert.Equal(t, "100", form.Get("MaxResults"))
}

func TestList_FlattensInstancesPerReservation(t *testing.T) {
	ft := &fakeTransport{responses: []fakeResponse{{
		contentType: "text/xml",
		body: `<DescribeInstancesResponse><reservationSet>
<item><reservationId>r-1</reservationId><instancesSet>
  <item><instanceId>i-a</instanceId><instanceState><name>running</name></instanceState></item>
  <item><instanceId>i-b</instanceId><instanceState><name>pending</name></instanceState></item>
</instancesSet></item>
<item><reservationId>r-2</reservationId><instancesSet>
  <item><instanceId>i-c</instanceId><instanceState><name>stopped</name></instanceState></item>
</instancesSet></item>
</reservationSet></DescribeInstancesResponse>`,
	}}}
	d := newTestDispatcher(t, embeddedRegistry(t), ft)

	records, err := d.ListAll(context.Background(), "ec2-instances", "eu-west-1")
	require.NoError(t, err)
	require.Len(t, records, 3)

	var ids, states []string
	for _, r := range records {
		ids = append(ids, r.ID)
		states = append(states, r.Fields["state"])
	}
	assert.Equal(t, []string{"i-a", "i-b", "i-c"}, ids)
	assert.Equal(t, []string{"running", "pending", "stopped"}, states)
}

func TestList_MissingNestedRootIsAnErrorForJSON(t *testing.T) {
	ft := &fakeTransport{responses: []fakeResponse{{body: `{"Result":{}}`}}}
	d := newTestDispatcher(t, nil, ft)

	records, err := d.ListAll(context.Background(), "nested", "")
	require.Error(t, err)
	assert.Empty(t, records)
	assert.ErrorIs(t, err, ErrMissingResponseRoot)
}

func TestList_EmptyXMLCollection(t *testing.T) {
	ft := &fakeTransport{responses: []fakeResponse{{
		contentType: "application/xml",
		body:        `<ListAllMyBucketsResult><Owner><ID>abc</ID></Owner><Buckets></Buckets></ListAllMyBucketsResult>`,
	}}}
	d := newTestDispatcher(t, embeddedRegistry(t), ft)

	records, err := d.ListAll(context.Background(), "s3-buckets", "eu-central-1")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestList_GlobalService(t *testing.T) {
	ft := &fakeTransport{responses: []fakeResponse{{
		contentType: "text/xml",
		body: `<ListUsersResponse><ListUsersResult><IsTruncated>false</IsTruncated><Users>
<member><UserName>alice</UserName><UserId>AIDA1</UserId><Arn>arn:aws:iam::123456789012:user/alice</Arn></member>
</Users></ListUsersResult></ListUsersResponse>`,
	}}}
	d := newTestDispatcher(t, embeddedRegistry(t), ft)

	records, err := d.ListAll(context.Background(), "iam-users", "ap-southeast-2")
	require.NoError(t, err)
	require.Len(t, records, 1)

	req := ft.requests[0]
	assert.Equal(t, "https://iam.amazonaws.com/", req.URL)
	assert.Contains(t, req.Headers["Authorization"], "/us-east-1/iam/aws4_request")
}

func TestList_EndpointOverride(t *testing.T) {
	ft := &fakeTransport{responses: []fakeResponse{{body: `{"Items":[]}`}}}
	d := newTestDispatcher(t, nil, ft, WithEndpoint("http://localhost:4566"))

	records, err := d.ListAll(context.Background(), "widgets", "")
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, "http://localhost:4566/", ft.requests[0].URL)
}

func TestDescribe(t *testing.T) {
	ft := &fakeTransport{responses: []fakeResponse{
		{body: `{"Widget":{"Id":"w\"1","Label":"quoted","Bytes":1073741824}}`},
	}}
	d := newTestDispatcher(t, nil, ft)

	record, err := d.Describe(context.Background(), "widgets", `w"1`, "")
	require.NoError(t, err)
	assert.Equal(t, `w"1`, record.ID)
	assert.Equal(t, "quoted", record.Name)
	assert.Equal(t, "1.0 GiB", record.Fields["size"])

	req := ft.requests[0]
	assert.Equal(t, "DynamoDB_20120810.DescribeWidget", req.Headers["X-Amz-Target"])
	assert.Equal(t, `w"1`, requestBody(t, req)["WidgetName"], "the id is JSON-escaped into the template")
}

func TestDescribe_FirstOfSequence(t *testing.T) {
	ft := &fakeTransport{responses: []fakeResponse{{
		contentType: "text/xml",
		body: `<DescribeInstancesResponse><reservationSet><item><instancesSet><item>
<instanceId>i-1</instanceId><instanceState><name>stopped</name></instanceState>
</item></instancesSet></item></reservationSet></DescribeInstancesResponse>`,
	}}}
	d := newTestDispatcher(t, embeddedRegistry(t), ft)

	record, err := d.Describe(context.Background(), "ec2-instances", "i-1", "")
	require.NoError(t, err)
	assert.Equal(t, "i-1", record.ID)
	assert.Equal(t, "stopped", record.Fields["state"])

	form, err := url.ParseQuery(string(ft.requests[0].Body))
	require.NoError(t, err)
	assert.Equal(t, "i-1", form.Get("InstanceId.1"))
}

func TestDescribe_Errors(t *testing.T) {
	tests := []struct {
		name      string
		resource  string
		responses []fakeResponse
		wantIs    error
		wantCalls int
	}{
		{name: "unknown resource", resource: "nope", wantIs: ErrUnknownResource},
		{name: "no describe config", resource: "gizmos", wantIs: ErrNoDescribeConfig},
		{
			name:      "missing root",
			resource:  "widgets",
			responses: []fakeResponse{{body: `{"Other":{}}`}},
			wantIs:    ErrMissingResponseRoot,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := &fakeTransport{responses: tt.responses}
			d := newTestDispatcher(t, nil, ft)

			record, err := d.Describe(context.Background(), tt.resource, "id-1", "")
			assert.Nil(t, record)
			assert.ErrorIs(t, err, tt.wantIs)
			assert.Equal(t, tt.wantCalls, ft.calls())

			var de *Error
			require.ErrorAs(t, err, &de)
			assert.Equal(t, OpDescribe, de.Op)
		})
	}
}

func TestInvokeAction(t *testing.T) {
	ft := &fakeTransport{responses: []fakeResponse{
		{body: `{"WidgetDescription":{"Status":"DELETING"}}`},
	}}
	d := newTestDispatcher(t, nil, ft)

	result, err := d.InvokeAction(context.Background(), "widgets", "delete_widget", "w-1", "")
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"WidgetDescription": map[string]any{"Status": "DELETING"}}, result,
		"action results are returned unmapped")

	body := requestBody(t, ft.requests[0])
	assert.Equal(t, "w-1", body["WidgetName"])
	assert.Equal(t, true, body["Force"])
}

func TestInvokeAction_EmptyBody(t *testing.T) {
	ft := &fakeTransport{responses: []fakeResponse{{status: 204}}}
	d := newTestDispatcher(t, embeddedRegistry(t), ft)

	result, err := d.InvokeAction(context.Background(), "lambda-functions", "delete_function", "my-fn", "eu-west-1")
	require.NoError(t, err)
	assert.Nil(t, result)

	req := ft.requests[0]
	assert.Equal(t, "DELETE", req.Method)
	assert.Equal(t, "https://lambda.eu-west-1.amazonaws.com/2015-03-31/functions/my-fn", req.URL)
}

func TestInvokeAction_UnknownActionMakesNoCalls(t *testing.T) {
	ft := &fakeTransport{}
	d := newTestDispatcher(t, nil, ft)

	_, err := d.InvokeAction(context.Background(), "widgets", "explode", "w-1", "")
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.Equal(t, 0, ft.calls())

	var de *Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, OpAction, de.Op)
	assert.Equal(t, "widgets", de.Resource)
	assert.NotEmpty(t, de.Suggestion())
	assert.Equal(t, "not_found", de.ErrorType())
}

func TestInvokeAction_CredentialsError(t *testing.T) {
	ft := &fakeTransport{}
	creds := CredentialsFunc(func(context.Context) (signer.Credentials, error) {
		return signer.Credentials{}, errors.New("no credentials in chain")
	})
	reg, err := registry.Load(registry.Source{Name: "widgets.yaml", Data: []byte(widgetsYAML)})
	require.NoError(t, err)
	d := New(reg, service.Default(), ft, creds, WithLogger(log.Discard()))

	_, err = d.InvokeAction(context.Background(), "widgets", "delete_widget", "w-1", "")
	assert.ErrorContains(t, err, "no credentials in chain")
	assert.Equal(t, 0, ft.calls())
}

func TestInvokeAction_SigningError(t *testing.T) {
	ft := &fakeTransport{}
	reg, err := registry.Load(registry.Source{Name: "widgets.yaml", Data: []byte(widgetsYAML)})
	require.NoError(t, err)
	d := New(reg, service.Default(), ft, StaticCredentials(signer.Credentials{Region: "eu-west-1"}), WithLogger(log.Discard()))

	_, err = d.InvokeAction(context.Background(), "widgets", "delete_widget", "w-1", "")
	assert.ErrorIs(t, err, signer.ErrSigning)
	assert.Equal(t, 0, ft.calls())
}

func TestActionParams(t *testing.T) {
	tests := []struct {
		name    string
		cfg     registry.ActionConfig
		id      string
		want    map[string]any
		wantErr bool
	}{
		{
			name: "id param",
			cfg:  registry.ActionConfig{IDParam: "InstanceId.1"},
			id:   "i-1",
			want: map[string]any{"InstanceId.1": "i-1"},
		},
		{
			name: "template escapes id",
			cfg:  registry.ActionConfig{BodyTemplate: `{"Name": "{resource_id}"}`},
			id:   `a\b"c`,
			want: map[string]any{"Name": `a\b"c`},
		},
		{
			name: "id param wins over template and static params",
			cfg: registry.ActionConfig{
				IDParam:      "Name",
				BodyTemplate: `{"Name": "x", "Mode": "fast"}`,
				StaticParams: map[string]any{"Mode": "slow", "DryRun": false},
			},
			id:   "n-1",
			want: map[string]any{"Name": "n-1", "Mode": "fast", "DryRun": false},
		},
		{
			name:    "invalid template",
			cfg:     registry.ActionConfig{Action: "Broken", BodyTemplate: `{"Name": {resource_id}}`},
			id:      "n-1",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := actionParams(&tt.cfg, tt.id)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCollection(t *testing.T) {
	tests := []struct {
		name     string
		tree     any
		root     string
		protocol string
		want     int
		wantErr  bool
	}{
		{name: "sequence", tree: map[string]any{"A": []any{1.0, 2.0}}, root: "/A", want: 2},
		{name: "single mapping", tree: map[string]any{"A": map[string]any{"x": "1"}}, root: "/A", want: 1},
		{name: "scalar", tree: map[string]any{"A": "only"}, root: "/A", want: 1},
		{name: "empty string", tree: map[string]any{"A": ""}, root: "/A", want: 0},
		{name: "null", tree: map[string]any{"A": nil}, root: "/A", want: 0},
		{name: "xml empty parent", tree: map[string]any{"A": ""}, root: "/A/B", protocol: service.ProtocolRESTXML, want: 0},
		{name: "query empty parent", tree: map[string]any{"A": ""}, root: "/A/B", protocol: service.ProtocolQuery, want: 0},
		{name: "json empty parent", tree: map[string]any{"A": map[string]any{}}, root: "/A/B", protocol: service.ProtocolJSON, wantErr: true},
		{name: "rest-json empty parent", tree: map[string]any{"A": map[string]any{}}, root: "/A/B", protocol: service.ProtocolRESTJSON, wantErr: true},
		{name: "missing", tree: map[string]any{"A": "x"}, root: "/B", wantErr: true},
		{name: "missing under non-empty parent", tree: map[string]any{"A": map[string]any{"C": "1"}}, root: "/A/B", protocol: service.ProtocolQuery, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := collection(tt.tree, tt.root, tt.protocol)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMissingResponseRoot)
				return
			}
			require.NoError(t, err)
			assert.Len(t, items, tt.want)
		})
	}
}

func TestFlatten(t *testing.T) {
	reservations := []any{
		map[string]any{"set": []any{"a", "b"}},
		map[string]any{"set": ""},
		map[string]any{"other": "x"},
		map[string]any{"set": map[string]any{"id": "c"}},
	}

	assert.Equal(t, reservations, flatten(reservations, ""))
	assert.Equal(t, []any{"a", "b", map[string]any{"id": "c"}}, flatten(reservations, "/set"))
	assert.Empty(t, flatten(nil, "/set"))
}

func TestList_Concurrent(t *testing.T) {
	reg, err := registry.Load(registry.Source{Name: "widgets.yaml", Data: []byte(widgetsYAML)})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ft := &fakeTransport{responses: []fakeResponse{{body: `{"Items":[{"Id":"a"},{"Id":"b"}]}`}}}
			d := New(reg, service.Default(), ft, StaticCredentials(testCreds), WithLogger(log.Discard()))
			records, err := d.ListAll(context.Background(), "widgets", "")
			assert.NoError(t, err, "worker %d", i)
			assert.Len(t, records, 2)
		}()
	}
	wg.Wait()
}
