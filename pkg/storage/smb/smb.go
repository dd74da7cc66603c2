package smb

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudsoda/go-smb2"
	log "github.com/sirupsen/logrus"
)

const (
	defaultSMBPort = "445"
)

// SMB stores archives on a share; the first URL path element names the share.
type SMB struct {
	url      url.URL
	domain   string
	username string
	password string
}

type Option func(s *SMB)

func WithDomain(domain string) Option {
	return func(s *SMB) {
		s.domain = domain
	}
}
func WithUsername(username string) Option {
	return func(s *SMB) {
		s.username = username
	}
}
func WithPassword(password string) Option {
	return func(s *SMB) {
		s.password = password
	}
}

func New(u url.URL, opts ...Option) *SMB {
	s := &SMB{url: u}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SMB) Pull(ctx context.Context, source, target string, logger *log.Entry) (int64, error) {
	logger.Debugf("downloading %s from %s", source, s.url.Host)
	return s.command(ctx, false, source, target)
}

func (s *SMB) Push(ctx context.Context, target, source string, logger *log.Entry) (int64, error) {
	logger.Debugf("uploading %s to %s as %s", source, s.url.Host, s.Clean(target))
	return s.command(ctx, true, target, source)
}

// Clean replaces characters SMB shares reject in file names.
func (s *SMB) Clean(filename string) string {
	return strings.ReplaceAll(filename, ":", "-")
}

func (s *SMB) Protocol() string {
	return "smb"
}

func (s *SMB) URL() string {
	return s.url.String()
}

// credentials returns the login for the share, preferring explicit options over the URL.
func (s *SMB) credentials() (username, password, domain string) {
	username, password, domain = s.username, s.password, s.domain
	if username == "" && s.url.User != nil {
		username = s.url.User.Username()
		password, _ = s.url.User.Password()
	}
	user, urlDomain := parseSMBDomain(username)
	if domain == "" {
		domain = urlDomain
	}
	return user, password, domain
}

func (s *SMB) command(ctx context.Context, push bool, remoteFilename, filename string) (int64, error) {
	hostname, port, path := s.url.Hostname(), s.url.Port(), s.url.Path
	// set default port
	if port == "" {
		port = defaultSMBPort
	}
	host := net.JoinHostPort(hostname, port)
	share, sharepath := parseSMBPath(path)
	username, password, domain := s.credentials()

	var nd net.Dialer
	conn, err := nd.DialContext(ctx, "tcp", host)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	d := &smb2.Dialer{
		Initiator: &smb2.NTLMInitiator{
			Domain:   domain,
			User:     username,
			Password: password,
		},
	}

	smbConn, err := d.Dial(conn)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = smbConn.Logoff()
	}()

	fs, err := smbConn.Mount(share)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = fs.Umount()
	}()

	smbFilename := smbJoin(sharepath, filepath.Base(s.Clean(remoteFilename)))

	var (
		from io.ReadCloser
		to   io.WriteCloser
	)
	if push {
		from, err = os.Open(filename)
		if err != nil {
			return 0, err
		}
		defer from.Close()
		to, err = fs.Create(smbFilename)
		if err != nil {
			return 0, err
		}
		defer to.Close()
	} else {
		to, err = os.Create(filename)
		if err != nil {
			return 0, err
		}
		defer to.Close()
		from, err = fs.Open(smbFilename)
		if err != nil {
			return 0, err
		}
		defer from.Close()
	}
	return io.Copy(to, from)
}

func smbJoin(sharepath, name string) string {
	if sharepath == "" {
		return name
	}
	return fmt.Sprintf("%s%c%s", strings.ReplaceAll(sharepath, "/", string(smb2.PathSeparator)), smb2.PathSeparator, name)
}

// parseSMBDomain parse a username to get an SMB domain
func parseSMBDomain(username string) (user, domain string) {
	parts := strings.SplitN(username, ";", 2)
	if len(parts) < 2 {
		return username, ""
	}
	// if we reached this point, we have a username that has a domain in it
	return parts[1], parts[0]
}

// parseSMBPath parse an smb path into its constituent parts
func parseSMBPath(path string) (share, sharepath string) {
	sep := "/"
	parts := strings.Split(path, sep)
	if len(parts) <= 1 {
		return path, ""
	}
	// if the path started with a slash, it might have an empty string as the first element
	if parts[0] == "" {
		parts = parts[1:]
	}
	// ensure no leading / as it messes up SMB
	return parts[0], strings.Trim(strings.Join(parts[1:], sep), sep)
}
