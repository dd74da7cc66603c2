package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/databacker/dir-archiver/pkg/storage"
	"github.com/databacker/dir-archiver/pkg/storage/credentials"
	"github.com/databacker/dir-archiver/pkg/storage/s3"
	"github.com/databacker/dir-archiver/pkg/storage/scp"
	"github.com/databacker/dir-archiver/pkg/storage/smb"
	"github.com/databacker/dir-archiver/pkg/util"
)

type logLevel string

const (
	configType = "config.databack.io"
	version    = "1"

	logLevelError   logLevel = "error"
	logLevelWarning logLevel = "warning"
	logLevelInfo    logLevel = "info"
	logLevelDebug   logLevel = "debug"
	logLevelTrace   logLevel = "trace"
	logLevelDefault logLevel = logLevelInfo
)

type Config struct {
	Type       string     `yaml:"type"`
	Version    string     `yaml:"version"`
	Logging    logLevel   `yaml:"logging"`
	Compress   Compress   `yaml:"compress"`
	Decompress Decompress `yaml:"decompress"`
	Targets    Targets    `yaml:"targets"`
	Telemetry  Telemetry  `yaml:"telemetry"`
}

type Compress struct {
	Compression string          `yaml:"compression"`
	Level       *uint           `yaml:"level"`
	FileName    string          `yaml:"filename"`
	Safechars   bool            `yaml:"safechars"`
	Schedule    Schedule        `yaml:"schedule"`
	Scripts     CompressScripts `yaml:"scripts"`
	Targets     []string        `yaml:"targets"`
}

type Schedule struct {
	Once      bool   `yaml:"once"`
	Cron      string `yaml:"cron"`
	Frequency int    `yaml:"frequency"`
	Begin     string `yaml:"begin"`
}

type CompressScripts struct {
	PreCompress  string `yaml:"preCompress"`
	PostCompress string `yaml:"postCompress"`
}

type Decompress struct {
	Compression string            `yaml:"compression"`
	Scripts     DecompressScripts `yaml:"scripts"`
}

type DecompressScripts struct {
	PreDecompress  string `yaml:"preDecompress"`
	PostDecompress string `yaml:"postDecompress"`
}

type Telemetry struct {
	// URL receives log entries as JSON and, with the /v1/traces path, traces.
	URL string `yaml:"url"`
	// BufferSize is the size of the buffer for telemetry messages. It keeps BufferSize messages
	// in memory before sending them remotely. The default of 0 is the same as 1, i.e. send every message.
	BufferSize int `yaml:"bufferSize"`
}

var _ yaml.Unmarshaler = &Target{}

type Targets map[string]Target

type Target struct {
	Storage
}

type Storage interface {
	Storage() (storage.Storage, error) // convert to a storage.Storage instance
}

func (t *Target) UnmarshalYAML(n *yaml.Node) error {
	type T struct {
		Type string `yaml:"type"`
	}
	obj := &T{}
	if err := n.Decode(obj); err != nil {
		return err
	}
	// based on the type, load the rest of the data
	switch obj.Type {
	case "s3":
		var s3Target S3Target
		if err := n.Decode(&s3Target); err != nil {
			return err
		}
		t.Storage = s3Target
	case "smb":
		var smbTarget SMBTarget
		if err := n.Decode(&smbTarget); err != nil {
			return err
		}
		t.Storage = smbTarget
	case "scp":
		var scpTarget SCPTarget
		if err := n.Decode(&scpTarget); err != nil {
			return err
		}
		t.Storage = scpTarget
	case "file":
		var fileTarget FileTarget
		if err := n.Decode(&fileTarget); err != nil {
			return err
		}
		t.Storage = fileTarget
	default:
		return fmt.Errorf("unknown target type: %s", obj.Type)
	}

	return nil
}

type S3Target struct {
	Type         string         `yaml:"type"`
	URL          string         `yaml:"url"`
	Region       string         `yaml:"region"`
	Endpoint     string         `yaml:"endpoint"`
	Credentials  AWSCredentials `yaml:"credentials"`
	UsePathStyle bool           `yaml:"usePathStyle"`
}

func (s S3Target) Storage() (storage.Storage, error) {
	u, err := util.SmartParse(s.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid target url: %w", err)
	}
	opts := []s3.Option{}
	if s.Region != "" {
		opts = append(opts, s3.WithRegion(s.Region))
	}
	if s.Endpoint != "" {
		opts = append(opts, s3.WithEndpoint(s.Endpoint))
	}
	if s.UsePathStyle {
		opts = append(opts, s3.WithPathStyle())
	}
	if s.Credentials.AccessKeyId != "" {
		opts = append(opts, s3.WithAccessKeyId(s.Credentials.AccessKeyId))
	}
	if s.Credentials.SecretAccessKey != "" {
		opts = append(opts, s3.WithSecretAccessKey(s.Credentials.SecretAccessKey))
	}
	return s3.New(*u, opts...), nil
}

type AWSCredentials struct {
	AccessKeyId     string `yaml:"accessKeyId"`
	SecretAccessKey string `yaml:"secretAccessKey"`
}

type SMBTarget struct {
	Type        string         `yaml:"type"`
	URL         string         `yaml:"url"`
	Credentials SMBCredentials `yaml:"credentials"`
}

func (s SMBTarget) Storage() (storage.Storage, error) {
	u, err := util.SmartParse(s.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid target url: %w", err)
	}
	opts := []smb.Option{}
	if s.Credentials.Domain != "" {
		opts = append(opts, smb.WithDomain(s.Credentials.Domain))
	}
	if s.Credentials.Username != "" {
		opts = append(opts, smb.WithUsername(s.Credentials.Username))
	}
	if s.Credentials.Password != "" {
		opts = append(opts, smb.WithPassword(s.Credentials.Password))
	}
	return smb.New(*u, opts...), nil
}

type SMBCredentials struct {
	Domain   string `yaml:"domain"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// SCPTarget authenticates with the ssh agent, ssh config and keys under SSH_HOME.
type SCPTarget struct {
	Type string `yaml:"type"`
	URL  string `yaml:"url"`
}

func (s SCPTarget) Storage() (storage.Storage, error) {
	u, err := util.SmartParse(s.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid target url: %w", err)
	}
	return scp.New(*u), nil
}

type FileTarget struct {
	Type string `yaml:"type"`
	URL  string `yaml:"url"`
}

func (f FileTarget) Storage() (storage.Storage, error) {
	return storage.ParseURL(f.URL, credentials.Creds{})
}
