package config

import (
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

// ExpandTilde replaces ~ or ~/path with the user's home directory.
// Does not support ~username syntax - just ~ for the current user.
func ExpandTilde(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path // Return unchanged if we can't get home
		}
		return filepath.Join(home, path[2:])
	}

	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}

	return path
}

// Expand replaces variables in a string with their values.
// Supported variables:
//   - ${PROJECT} - ESP-IDF project name, git repo name or directory name
//   - ${USER}    - current username
//   - ${HOME}    - user's home directory
func Expand(s string) string {
	if s == "" {
		return s
	}

	result := s

	if strings.Contains(result, "${PROJECT}") {
		result = strings.ReplaceAll(result, "${PROJECT}", getProject())
	}

	if strings.Contains(result, "${USER}") {
		result = strings.ReplaceAll(result, "${USER}", getUser())
	}

	if strings.Contains(result, "${HOME}") {
		result = strings.ReplaceAll(result, "${HOME}", getHome())
	}

	return result
}

// ExpandPath expands variables and a leading ~ in a local path.
func ExpandPath(s string) string {
	return ExpandTilde(Expand(s))
}

// getProject returns the project name for ${PROJECT} expansion.
// Priority: project() in CMakeLists.txt > git repo name > directory name.
func getProject() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "project"
	}

	if name := cmakeProjectName(filepath.Join(cwd, "CMakeLists.txt")); name != "" {
		return name
	}
	if root := findGitRoot(cwd); root != "" && root != cwd {
		if name := cmakeProjectName(filepath.Join(root, "CMakeLists.txt")); name != "" {
			return name
		}
	}

	if name := getGitRepoName(); name != "" {
		return name
	}

	return filepath.Base(cwd)
}

var cmakeProjectRe = regexp.MustCompile(`(?m)^\s*project\s*\(\s*([A-Za-z0-9_.+-]+)`)

// cmakeProjectName extracts the name from the project(...) call, which is
// what ESP-IDF names the built ELF after.
func cmakeProjectName(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	m := cmakeProjectRe.FindSubmatch(data)
	if m == nil {
		return ""
	}
	return string(m[1])
}

// getGitRepoName extracts the repository name from git remote origin.
func getGitRepoName() string {
	cmd := exec.Command("git", "remote", "get-url", "origin")
	out, err := cmd.Output()
	if err != nil {
		// No git remote, try to get repo root directory name
		cmd = exec.Command("git", "rev-parse", "--show-toplevel")
		out, err = cmd.Output()
		if err != nil {
			return ""
		}
		return filepath.Base(strings.TrimSpace(string(out)))
	}

	url := strings.TrimSpace(string(out))
	return extractRepoName(url)
}

// extractRepoName parses repo name from various git URL formats.
func extractRepoName(url string) string {
	// Handle SSH URLs: git@github.com:user/repo.git
	if strings.Contains(url, ":") && !strings.Contains(url, "://") {
		parts := strings.Split(url, ":")
		if len(parts) == 2 {
			return strings.TrimSuffix(filepath.Base(parts[1]), ".git")
		}
	}

	// Handle HTTPS URLs: https://github.com/user/repo.git
	return strings.TrimSuffix(filepath.Base(url), ".git")
}

// getUser returns the current username for ${USER} expansion.
func getUser() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	if user := os.Getenv("LOGNAME"); user != "" {
		return user
	}
	if user := os.Getenv("USERNAME"); user != "" {
		return user
	}

	out, err := exec.Command("whoami").Output()
	if err != nil {
		return "user"
	}
	return strings.TrimSpace(string(out))
}

// getHome returns the home directory for ${HOME} expansion.
func getHome() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	return "~"
}
