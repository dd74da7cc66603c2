package scp

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	scp "github.com/bramvdbogaerde/go-scp"
	"github.com/kevinburke/ssh_config"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

const defaultSSHPort = "22"

var baseIdentityFileNames = []string{
	"id_ed25519",
	"id_ecdsa",
	"id_ecdsa_sk",   // FIDO2
	"id_ed25519_sk", // FIDO2
	"id_rsa",        // still common, though SHA-1 is discouraged
}

// sshHome is the directory holding ssh config, keys and known_hosts.
func sshHome() string {
	if dir := os.Getenv("SSH_HOME"); dir != "" {
		return dir
	}
	return filepath.Join(os.Getenv("HOME"), ".ssh")
}

func getIdentityFiles() []string {
	idFileDir := sshHome()
	var files []string
	for _, name := range baseIdentityFileNames {
		filename := filepath.Join(idFileDir, name)
		stat, err := os.Stat(filename) // check if file exists
		if err == nil && !stat.IsDir() {
			files = append(files, filename)
		}
	}
	return files
}

// SCP stores archives on a remote host over ssh; the URL path is the remote directory.
type SCP struct {
	url url.URL
}

func New(u url.URL) *SCP {
	return &SCP{u}
}

func (s *SCP) Pull(ctx context.Context, source, target string, logger *log.Entry) (int64, error) {
	client, err := s.getSCPClient(logger)
	if err != nil {
		return 0, fmt.Errorf("failed to create SCP client: %w", err)
	}
	f, err := os.OpenFile(target, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		client.Close()
		return 0, fmt.Errorf("failed to open target file %s: %w", target, err)
	}

	defer func() {
		// Close client connection after the file has been copied
		client.Close()
		// Close the file after it has been copied
		_ = f.Close()
	}()

	remote := s.remotePath(source)
	logger.Debugf("downloading %s from %s", remote, s.url.Host)
	if err := client.CopyFromRemote(ctx, f, remote); err != nil {
		// the remote scp reports a missing file as a protocol error message
		if strings.Contains(err.Error(), "No such file or directory") {
			return 0, fmt.Errorf("remote file %s: %w", remote, fs.ErrNotExist)
		}
		return 0, fmt.Errorf("failed to copy file from SCP server: %w", err)
	}
	stat, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to get file stat: %w", err)
	}
	return stat.Size(), nil
}

func (s *SCP) Push(ctx context.Context, target, source string, logger *log.Entry) (int64, error) {
	f, err := os.Open(source)
	if err != nil {
		return 0, fmt.Errorf("failed to open source file %s: %w", source, err)
	}
	defer func() { _ = f.Close() }()

	client, err := s.getSCPClient(logger)
	if err != nil {
		return 0, fmt.Errorf("failed to create SCP client: %w", err)
	}
	// Close client connection after the file has been copied
	defer client.Close()

	logger.Debugf("uploading %s to %s:%s", source, s.url.Host, s.remotePath(target))
	if err := client.CopyFromFile(ctx, *f, s.remotePath(target), "0644"); err != nil {
		return 0, fmt.Errorf("failed to copy file to SCP server: %w", err)
	}
	stat, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to get file stat: %w", err)
	}
	return stat.Size(), nil
}

func (s *SCP) Clean(filename string) string {
	return filename
}

func (s *SCP) Protocol() string {
	return "scp"
}

func (s *SCP) URL() string {
	return s.url.String()
}

func (s *SCP) remotePath(name string) string {
	return path.Join(s.url.Path, name)
}

// sshTarget is where to connect and as whom, after applying ssh config.
type sshTarget struct {
	hostname      string
	port          string
	username      string
	identityFiles []string
}

// resolveHost applies the ssh config entries for the URL host on top of the URL.
func resolveHost(u url.URL, sshConfig *ssh_config.Config) (sshTarget, error) {
	t := sshTarget{
		hostname: u.Hostname(),
		port:     u.Port(),
	}
	if u.User != nil {
		t.username = u.User.Username()
	}
	alias := u.Hostname()
	configPort, err := sshConfig.Get(alias, "Port")
	if err != nil {
		return t, fmt.Errorf("error getting port from SSH config: %w", err)
	}
	configHostname, err := sshConfig.Get(alias, "HostName")
	if err != nil {
		return t, fmt.Errorf("error getting hostname from SSH config: %w", err)
	}
	configIdentityFile, err := sshConfig.Get(alias, "IdentityFile")
	if err != nil {
		return t, fmt.Errorf("error getting identity file from SSH config: %w", err)
	}
	configUsername, err := sshConfig.Get(alias, "User")
	if err != nil {
		return t, fmt.Errorf("error getting username from SSH config: %w", err)
	}
	if configPort != "" && t.port == "" {
		t.port = configPort
	}
	if configHostname != "" {
		t.hostname = configHostname
	}
	if configUsername != "" && t.username == "" {
		t.username = configUsername
	}
	if configIdentityFile != "" {
		t.identityFiles = append(t.identityFiles, configIdentityFile)
	}
	if t.port == "" {
		t.port = defaultSSHPort
	}
	if t.username == "" {
		t.username = os.Getenv("USER")
	}
	// look for fixed identity files, if none explicitly specified
	if len(t.identityFiles) == 0 {
		t.identityFiles = getIdentityFiles()
	}
	return t, nil
}

func (s *SCP) getSSHClient(logger *log.Entry) (*ssh.Client, error) {
	sshConfig, err := loadSSHConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load SSH config: %w", err)
	}
	target, err := resolveHost(s.url, sshConfig)
	if err != nil {
		return nil, err
	}
	authMethods, err := authMethodsFromAgentAndFiles(target.identityFiles)
	if err != nil {
		return nil, fmt.Errorf("failed to get SSH auth methods: %w", err)
	}
	hostKeyCallback, err := hostKeyCallback(logger)
	if err != nil {
		return nil, err
	}
	clientConfig := &ssh.ClientConfig{
		User:            target.username,
		Auth:            authMethods,
		Timeout:         15 * time.Second,
		HostKeyCallback: hostKeyCallback,
	}

	client, err := ssh.Dial("tcp", net.JoinHostPort(target.hostname, target.port), clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SSH server: %w", err)
	}
	return client, nil
}

// hostKeyCallback verifies against known_hosts when there is one.
func hostKeyCallback(logger *log.Entry) (ssh.HostKeyCallback, error) {
	knownHosts := filepath.Join(sshHome(), "known_hosts")
	if _, err := os.Stat(knownHosts); err == nil {
		cb, err := knownhosts.New(knownHosts)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", knownHosts, err)
		}
		return cb, nil
	}
	if logger != nil {
		logger.Warnf("no known_hosts file at %s, not verifying host keys", knownHosts)
	}
	return ssh.InsecureIgnoreHostKey(), nil
}

func (s *SCP) getSCPClient(logger *log.Entry) (*scp.Client, error) {
	sshClient, err := s.getSSHClient(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH client: %w", err)
	}
	// Create a new SCP client
	client, err := scp.NewClientBySSH(sshClient)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SCP server: %w", err)
	}
	return &client, nil
}

func loadSSHConfig() (*ssh_config.Config, error) {
	f, err := os.Open(filepath.Join(sshHome(), "config"))
	if err != nil {
		// No config is fine; act like empty config.
		return &ssh_config.Config{}, nil
	}
	defer func() { _ = f.Close() }()
	return ssh_config.Decode(f)
}

func authMethodsFromAgentAndFiles(identityFiles []string) ([]ssh.AuthMethod, error) {
	var signers []ssh.Signer
	// ssh-agent
	if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
		if conn, err := net.Dial("unix", sock); err == nil {
			agentSigners, err := agent.NewClient(conn).Signers()
			if err != nil {
				return nil, fmt.Errorf("failed to get signers from SSH agent: %v", err)
			}
			signers = append(signers, agentSigners...)
		}
	}

	// Identity files
	for _, p := range identityFiles {
		key, err := os.ReadFile(p)
		// skip missing files gracefully
		if err != nil {
			continue
		}
		raw, err := ssh.ParseRawPrivateKey(key)
		var passErr *ssh.PassphraseMissingError
		if err != nil && errors.As(err, &passErr) {
			// ignore encrypted keys
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key %s: %w", p, err)
		}
		signer, err := ssh.NewSignerFromKey(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to create signer from key %s: %w", p, err)
		}
		signers = append(signers, signer)
	}
	if len(signers) == 0 {
		return nil, errors.New("no usable ssh keys in agent or identity files")
	}
	return []ssh.AuthMethod{ssh.PublicKeys(signers...)}, nil
}
