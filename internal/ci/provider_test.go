package ci

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func lookupFrom(vars map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func fixedWD() (string, error) { return "/work", nil }

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want Environment
	}{
		{
			name: "jenkins",
			vars: map[string]string{
				"JENKINS_URL":  "https://jenkins.example.com/",
				"BUILD_NUMBER": "42",
				"BUILD_URL":    "https://jenkins.example.com/job/e2e/42/",
				"GIT_BRANCH":   "main",
				"GIT_COMMIT":   "abc123",
				"JOB_NAME":     "e2e",
				"WORKSPACE":    "/var/jenkins/ws",
				"NODE_NAME":    "agent-1",
			},
			want: Environment{
				Provider:    ProviderJenkins,
				BuildNumber: "42",
				BuildURL:    "https://jenkins.example.com/job/e2e/42/",
				Branch:      "main",
				Commit:      "abc123",
				JobName:     "e2e",
				Workspace:   "/var/jenkins/ws",
				NodeName:    "agent-1",
			},
		},
		{
			name: "github actions pull request",
			vars: map[string]string{
				"GITHUB_ACTIONS":    "true",
				"GITHUB_RUN_NUMBER": "7",
				"GITHUB_SERVER_URL": "https://github.com",
				"GITHUB_REPOSITORY": "acme/shop",
				"GITHUB_RUN_ID":     "99",
				"GITHUB_HEAD_REF":   "feature/login",
				"GITHUB_REF_NAME":   "12/merge",
				"GITHUB_SHA":        "def456",
				"GITHUB_JOB":        "acceptance",
			},
			want: Environment{
				Provider:    ProviderGitHubActions,
				BuildNumber: "7",
				BuildURL:    "https://github.com/acme/shop/actions/runs/99",
				Branch:      "feature/login",
				Commit:      "def456",
				JobName:     "acceptance",
				Workspace:   "/work",
			},
		},
		{
			name: "gitlab",
			vars: map[string]string{
				"GITLAB_CI":          "true",
				"CI_PIPELINE_ID":     "1001",
				"CI_COMMIT_REF_NAME": "develop",
				"CI_PROJECT_DIR":     "/builds/acme",
			},
			want: Environment{Provider: ProviderGitLabCI, BuildNumber: "1001", Branch: "develop", Workspace: "/builds/acme"},
		},
		{
			name: "azure pipelines build url",
			vars: map[string]string{
				"TF_BUILD":                           "True",
				"SYSTEM_TEAMFOUNDATIONCOLLECTIONURI": "https://dev.azure.com/acme/",
				"SYSTEM_TEAMPROJECT":                 "shop",
				"BUILD_BUILDID":                      "55",
			},
			want: Environment{
				Provider:  ProviderAzurePipelines,
				BuildURL:  "https://dev.azure.com/acme/shop/_build/results?buildId=55",
				Workspace: "/work",
			},
		},
		{
			name: "bitbucket",
			vars: map[string]string{
				"BITBUCKET_BUILD_NUMBER":   "3",
				"BITBUCKET_REPO_FULL_NAME": "acme/shop",
			},
			want: Environment{
				Provider:    ProviderBitbucketPipelines,
				BuildNumber: "3",
				BuildURL:    "https://bitbucket.org/acme/shop/addon/pipelines/home#!/results/3",
				Workspace:   "/work",
			},
		},
		{
			name: "bamboo",
			vars: map[string]string{"bamboo_buildKey": "SHOP-E2E", "bamboo_buildNumber": "8"},
			want: Environment{Provider: ProviderBamboo, BuildNumber: "8", Workspace: "/work"},
		},
		{
			name: "jenkins wins over github",
			vars: map[string]string{"JENKINS_URL": "x", "GITHUB_ACTIONS": "true"},
			want: Environment{Provider: ProviderJenkins, Workspace: "/work"},
		},
		{
			name: "empty signal is ignored",
			vars: map[string]string{"JENKINS_URL": "", "DRONE": "true"},
			want: Environment{Provider: ProviderDrone, Workspace: "/work"},
		},
		{
			name: "no signals",
			vars: map[string]string{"PATH": "/usr/bin"},
			want: Environment{Provider: ProviderUnknown, Workspace: "/work"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(lookupFrom(tt.vars), fixedWD))
		})
	}
}

func TestDetectWithoutWorkingDirectory(t *testing.T) {
	env := Detect(lookupFrom(nil), func() (string, error) { return "", errors.New("gone") })
	assert.Equal(t, Environment{Provider: ProviderUnknown}, env)
	assert.False(t, env.IsCI())
}

func TestProvidersOrder(t *testing.T) {
	got := Providers()
	assert.Len(t, got, 11)
	assert.Equal(t, ProviderJenkins, got[0])
	assert.Equal(t, ProviderDrone, got[len(got)-1])
}

func TestEnvironmentVariables(t *testing.T) {
	env := Environment{Provider: ProviderCircleCI, BuildNumber: "12", Branch: "main", Workspace: "/home/circleci/project"}
	assert.Equal(t, map[string]string{
		"CI_PROVIDER":     "circleci",
		"CI_BUILD_NUMBER": "12",
		"CI_BRANCH":       "main",
		"CI_WORKSPACE":    "/home/circleci/project",
	}, env.Variables())
	assert.True(t, env.IsCI())
}
