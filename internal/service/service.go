// Package service holds the fixed per-service metadata that request
// construction and signing consult: signing name, endpoint prefix, API
// version, protocol family and whether the service is global.
package service

import (
	"fmt"
	"sort"
	"strings"
)

// Protocol tags for the four wire dialects.
const (
	ProtocolQuery    = "query"
	ProtocolJSON     = "json"
	ProtocolRESTJSON = "rest-json"
	ProtocolRESTXML  = "rest-xml"
)

// Protocols lists every supported protocol tag.
var Protocols = []string{ProtocolQuery, ProtocolJSON, ProtocolRESTJSON, ProtocolRESTXML}

// DefaultGlobalRegion is the signing region for global services.
const DefaultGlobalRegion = "us-east-1"

// Info describes one AWS service.
type Info struct {
	// SigningName is the service name in the SigV4 credential scope.
	SigningName string `yaml:"signing_name"`

	// EndpointPrefix is the host label in <prefix>.<region>.amazonaws.com.
	EndpointPrefix string `yaml:"endpoint_prefix"`

	// APIVersion is sent as Version= by query-protocol requests.
	APIVersion string `yaml:"api_version"`

	// Protocol is the service's native protocol family.
	Protocol string `yaml:"protocol"`

	// Global services have a single endpoint without a region label.
	Global bool `yaml:"global"`

	// SigningRegion overrides the region used in the credential scope.
	// Only meaningful for global services.
	SigningRegion string `yaml:"signing_region,omitempty"`

	// TargetPrefix is the X-Amz-Target prefix for json-protocol services.
	TargetPrefix string `yaml:"target_prefix,omitempty"`

	// JSONVersion selects application/x-amz-json-<ver> (1.0 or 1.1).
	JSONVersion string `yaml:"json_version,omitempty"`
}

// RegionFor returns the region to sign and route with.
func (i Info) RegionFor(region string) string {
	if i.Global {
		if i.SigningRegion != "" {
			return i.SigningRegion
		}
		return DefaultGlobalRegion
	}
	return region
}

// Endpoint returns the default https endpoint for region.
func (i Info) Endpoint(region string) string {
	if i.Global {
		return fmt.Sprintf("https://%s.amazonaws.com", i.EndpointPrefix)
	}
	host := fmt.Sprintf("%s.%s.amazonaws.com", i.EndpointPrefix, region)
	if strings.HasPrefix(region, "cn-") {
		host += ".cn"
	}
	return "https://" + host
}

// Catalog maps service identifiers to their metadata. A Catalog is
// read-only once constructed.
type Catalog map[string]Info

// Lookup returns the metadata for a service identifier.
func (c Catalog) Lookup(id string) (Info, bool) {
	info, ok := c[id]
	return info, ok
}

// Has reports whether the catalog knows a service.
func (c Catalog) Has(id string) bool {
	_, ok := c[id]
	return ok
}

// IDs returns the sorted service identifiers.
func (c Catalog) IDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// With returns a copy of c with extra entries merged over it.
func (c Catalog) With(extra Catalog) Catalog {
	merged := make(Catalog, len(c)+len(extra))
	for id, info := range c {
		merged[id] = info
	}
	for id, info := range extra {
		merged[id] = info
	}
	return merged
}

// Default returns the built-in catalog.
func Default() Catalog {
	return builtin.With(nil)
}

var builtin = Catalog{
	"ec2":            {SigningName: "ec2", EndpointPrefix: "ec2", APIVersion: "2016-11-15", Protocol: ProtocolQuery},
	"iam":            {SigningName: "iam", EndpointPrefix: "iam", APIVersion: "2010-05-08", Protocol: ProtocolQuery, Global: true},
	"sts":            {SigningName: "sts", EndpointPrefix: "sts", APIVersion: "2011-06-15", Protocol: ProtocolQuery},
	"rds":            {SigningName: "rds", EndpointPrefix: "rds", APIVersion: "2014-10-31", Protocol: ProtocolQuery},
	"elasticache":    {SigningName: "elasticache", EndpointPrefix: "elasticache", APIVersion: "2015-02-02", Protocol: ProtocolQuery},
	"sns":            {SigningName: "sns", EndpointPrefix: "sns", APIVersion: "2010-03-31", Protocol: ProtocolQuery},
	"sqs":            {SigningName: "sqs", EndpointPrefix: "sqs", APIVersion: "2012-11-05", Protocol: ProtocolQuery},
	"cloudformation": {SigningName: "cloudformation", EndpointPrefix: "cloudformation", APIVersion: "2010-05-15", Protocol: ProtocolQuery},
	"autoscaling":    {SigningName: "autoscaling", EndpointPrefix: "autoscaling", APIVersion: "2011-01-01", Protocol: ProtocolQuery},
	"elbv2":          {SigningName: "elasticloadbalancing", EndpointPrefix: "elasticloadbalancing", APIVersion: "2015-12-01", Protocol: ProtocolQuery},
	"cloudwatch":     {SigningName: "monitoring", EndpointPrefix: "monitoring", APIVersion: "2010-08-01", Protocol: ProtocolQuery},

	"dynamodb":       {SigningName: "dynamodb", EndpointPrefix: "dynamodb", APIVersion: "2012-08-10", Protocol: ProtocolJSON, TargetPrefix: "DynamoDB_20120810", JSONVersion: "1.0"},
	"logs":           {SigningName: "logs", EndpointPrefix: "logs", APIVersion: "2014-03-28", Protocol: ProtocolJSON, TargetPrefix: "Logs_20140328", JSONVersion: "1.1"},
	"ecs":            {SigningName: "ecs", EndpointPrefix: "ecs", APIVersion: "2014-11-13", Protocol: ProtocolJSON, TargetPrefix: "AmazonEC2ContainerServiceV20141113", JSONVersion: "1.1"},
	"ecr":            {SigningName: "ecr", EndpointPrefix: "api.ecr", APIVersion: "2015-09-21", Protocol: ProtocolJSON, TargetPrefix: "AmazonEC2ContainerRegistry_V20150921", JSONVersion: "1.1"},
	"kms":            {SigningName: "kms", EndpointPrefix: "kms", APIVersion: "2014-11-01", Protocol: ProtocolJSON, TargetPrefix: "TrentService", JSONVersion: "1.1"},
	"secretsmanager": {SigningName: "secretsmanager", EndpointPrefix: "secretsmanager", APIVersion: "2017-10-17", Protocol: ProtocolJSON, TargetPrefix: "secretsmanager", JSONVersion: "1.1"},
	"ssm":            {SigningName: "ssm", EndpointPrefix: "ssm", APIVersion: "2014-11-06", Protocol: ProtocolJSON, TargetPrefix: "AmazonSSM", JSONVersion: "1.1"},
	"sfn":            {SigningName: "states", EndpointPrefix: "states", APIVersion: "2016-11-23", Protocol: ProtocolJSON, TargetPrefix: "AWSStepFunctions", JSONVersion: "1.0"},

	"lambda":     {SigningName: "lambda", EndpointPrefix: "lambda", APIVersion: "2015-03-31", Protocol: ProtocolRESTJSON},
	"eks":        {SigningName: "eks", EndpointPrefix: "eks", APIVersion: "2017-11-01", Protocol: ProtocolRESTJSON},
	"apigateway": {SigningName: "apigateway", EndpointPrefix: "apigateway", APIVersion: "2015-07-09", Protocol: ProtocolRESTJSON},

	"s3":         {SigningName: "s3", EndpointPrefix: "s3", APIVersion: "2006-03-01", Protocol: ProtocolRESTXML},
	"route53":    {SigningName: "route53", EndpointPrefix: "route53", APIVersion: "2013-04-01", Protocol: ProtocolRESTXML, Global: true},
	"cloudfront": {SigningName: "cloudfront", EndpointPrefix: "cloudfront", APIVersion: "2020-05-31", Protocol: ProtocolRESTXML, Global: true},
}
