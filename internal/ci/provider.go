package ci

import (
	"os"
	"strings"
)

// Provider identifies a CI system.
type Provider string

const (
	ProviderJenkins            Provider = "jenkins"
	ProviderGitHubActions      Provider = "github-actions"
	ProviderGitLabCI           Provider = "gitlab-ci"
	ProviderCircleCI           Provider = "circleci"
	ProviderTravisCI           Provider = "travis-ci"
	ProviderAzurePipelines     Provider = "azure-pipelines"
	ProviderBitbucketPipelines Provider = "bitbucket-pipelines"
	ProviderTeamCity           Provider = "teamcity"
	ProviderBuildkite          Provider = "buildkite"
	ProviderBamboo             Provider = "bamboo"
	ProviderDrone              Provider = "drone"
	ProviderUnknown            Provider = "unknown"
)

// Environment describes the CI build a run happens in.
type Environment struct {
	Provider    Provider `json:"provider"`
	BuildNumber string   `json:"buildNumber,omitempty"`
	BuildURL    string   `json:"buildUrl,omitempty"`
	Branch      string   `json:"branch,omitempty"`
	Commit      string   `json:"commit,omitempty"`
	JobName     string   `json:"jobName,omitempty"`
	Workspace   string   `json:"workspace,omitempty"`
	NodeName    string   `json:"nodeName,omitempty"`
}

// IsCI reports whether a known provider was detected.
func (e Environment) IsCI() bool {
	return e.Provider != "" && e.Provider != ProviderUnknown
}

// Variables returns the CI_* variables for e. Empty values are left out.
func (e Environment) Variables() map[string]string {
	vars := make(map[string]string)
	set := func(key, value string) {
		if value != "" {
			vars[key] = value
		}
	}
	set("CI_PROVIDER", string(e.Provider))
	set("CI_BUILD_NUMBER", e.BuildNumber)
	set("CI_BUILD_URL", e.BuildURL)
	set("CI_BRANCH", e.Branch)
	set("CI_COMMIT", e.Commit)
	set("CI_JOB_NAME", e.JobName)
	set("CI_WORKSPACE", e.Workspace)
	return vars
}

// LookupFunc reads one environment variable.
type LookupFunc func(key string) (string, bool)

type providerSpec struct {
	provider Provider
	signal   string
	fill     func(get func(string) string, env *Environment)
}

// providers is checked in order; the first present signal wins.
var providers = []providerSpec{
	{ProviderJenkins, "JENKINS_URL", func(get func(string) string, env *Environment) {
		env.BuildNumber = get("BUILD_NUMBER")
		env.BuildURL = get("BUILD_URL")
		env.Branch = first(get("GIT_BRANCH"), get("BRANCH_NAME"))
		env.Commit = get("GIT_COMMIT")
		env.JobName = get("JOB_NAME")
		env.Workspace = get("WORKSPACE")
		env.NodeName = get("NODE_NAME")
	}},
	{ProviderGitHubActions, "GITHUB_ACTIONS", func(get func(string) string, env *Environment) {
		env.BuildNumber = get("GITHUB_RUN_NUMBER")
		if server, repo, id := get("GITHUB_SERVER_URL"), get("GITHUB_REPOSITORY"), get("GITHUB_RUN_ID"); server != "" && repo != "" && id != "" {
			env.BuildURL = strings.TrimSuffix(server, "/") + "/" + repo + "/actions/runs/" + id
		}
		env.Branch = first(get("GITHUB_HEAD_REF"), get("GITHUB_REF_NAME"))
		env.Commit = get("GITHUB_SHA")
		env.JobName = get("GITHUB_JOB")
		env.Workspace = get("GITHUB_WORKSPACE")
		env.NodeName = get("RUNNER_NAME")
	}},
	{ProviderGitLabCI, "GITLAB_CI", func(get func(string) string, env *Environment) {
		env.BuildNumber = get("CI_PIPELINE_ID")
		env.BuildURL = get("CI_PIPELINE_URL")
		env.Branch = get("CI_COMMIT_REF_NAME")
		env.Commit = get("CI_COMMIT_SHA")
		env.JobName = get("CI_JOB_NAME")
		env.Workspace = get("CI_PROJECT_DIR")
		env.NodeName = get("CI_RUNNER_DESCRIPTION")
	}},
	{ProviderCircleCI, "CIRCLECI", func(get func(string) string, env *Environment) {
		env.BuildNumber = get("CIRCLE_BUILD_NUM")
		env.BuildURL = get("CIRCLE_BUILD_URL")
		env.Branch = get("CIRCLE_BRANCH")
		env.Commit = get("CIRCLE_SHA1")
		env.JobName = get("CIRCLE_JOB")
		env.Workspace = get("CIRCLE_WORKING_DIRECTORY")
	}},
	{ProviderTravisCI, "TRAVIS", func(get func(string) string, env *Environment) {
		env.BuildNumber = get("TRAVIS_BUILD_NUMBER")
		env.BuildURL = get("TRAVIS_BUILD_WEB_URL")
		env.Branch = get("TRAVIS_BRANCH")
		env.Commit = get("TRAVIS_COMMIT")
		env.JobName = get("TRAVIS_JOB_NAME")
		env.Workspace = get("TRAVIS_BUILD_DIR")
	}},
	{ProviderAzurePipelines, "TF_BUILD", func(get func(string) string, env *Environment) {
		env.BuildNumber = get("BUILD_BUILDNUMBER")
		if collection, project, id := get("SYSTEM_TEAMFOUNDATIONCOLLECTIONURI"), get("SYSTEM_TEAMPROJECT"), get("BUILD_BUILDID"); collection != "" && project != "" && id != "" {
			env.BuildURL = strings.TrimSuffix(collection, "/") + "/" + project + "/_build/results?buildId=" + id
		}
		env.Branch = get("BUILD_SOURCEBRANCHNAME")
		env.Commit = get("BUILD_SOURCEVERSION")
		env.JobName = get("SYSTEM_JOBDISPLAYNAME")
		env.Workspace = get("BUILD_SOURCESDIRECTORY")
		env.NodeName = get("AGENT_NAME")
	}},
	{ProviderBitbucketPipelines, "BITBUCKET_BUILD_NUMBER", func(get func(string) string, env *Environment) {
		env.BuildNumber = get("BITBUCKET_BUILD_NUMBER")
		if repo := get("BITBUCKET_REPO_FULL_NAME"); repo != "" {
			env.BuildURL = "https://bitbucket.org/" + repo + "/addon/pipelines/home#!/results/" + env.BuildNumber
		}
		env.Branch = get("BITBUCKET_BRANCH")
		env.Commit = get("BITBUCKET_COMMIT")
		env.JobName = get("BITBUCKET_REPO_SLUG")
		env.Workspace = get("BITBUCKET_CLONE_DIR")
	}},
	{ProviderTeamCity, "TEAMCITY_VERSION", func(get func(string) string, env *Environment) {
		env.BuildNumber = get("BUILD_NUMBER")
		env.Commit = get("BUILD_VCS_NUMBER")
		env.JobName = get("TEAMCITY_BUILDCONF_NAME")
	}},
	{ProviderBuildkite, "BUILDKITE", func(get func(string) string, env *Environment) {
		env.BuildNumber = get("BUILDKITE_BUILD_NUMBER")
		env.BuildURL = get("BUILDKITE_BUILD_URL")
		env.Branch = get("BUILDKITE_BRANCH")
		env.Commit = get("BUILDKITE_COMMIT")
		env.JobName = get("BUILDKITE_LABEL")
		env.Workspace = get("BUILDKITE_BUILD_CHECKOUT_PATH")
		env.NodeName = get("BUILDKITE_AGENT_NAME")
	}},
	{ProviderBamboo, "bamboo_buildKey", func(get func(string) string, env *Environment) {
		env.BuildNumber = get("bamboo_buildNumber")
		env.BuildURL = get("bamboo_buildResultsUrl")
		env.Branch = get("bamboo_planRepository_branch")
		env.Commit = get("bamboo_planRepository_revision")
		env.JobName = get("bamboo_shortJobName")
		env.Workspace = get("bamboo_build_working_directory")
	}},
	{ProviderDrone, "DRONE", func(get func(string) string, env *Environment) {
		env.BuildNumber = get("DRONE_BUILD_NUMBER")
		env.BuildURL = get("DRONE_BUILD_LINK")
		env.Branch = get("DRONE_BRANCH")
		env.Commit = get("DRONE_COMMIT_SHA")
		env.JobName = get("DRONE_STAGE_NAME")
		env.Workspace = get("DRONE_WORKSPACE")
		env.NodeName = get("DRONE_STAGE_MACHINE")
	}},
}

// Providers lists the supported providers in detection order.
func Providers() []Provider {
	out := make([]Provider, 0, len(providers))
	for _, p := range providers {
		out = append(out, p.provider)
	}
	return out
}

// Detect inspects the environment through lookup. A signal counts only
// when it is set to a non-empty value. Without a known provider, or
// when the provider reports no workspace, the working directory is used.
func Detect(lookup LookupFunc, getwd func() (string, error)) Environment {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	env := Environment{Provider: ProviderUnknown}
	for _, p := range providers {
		if get(p.signal) == "" {
			continue
		}
		env.Provider = p.provider
		p.fill(get, &env)
		break
	}

	if env.Workspace == "" && getwd != nil {
		if wd, err := getwd(); err == nil {
			env.Workspace = wd
		}
	}
	return env
}

// DetectFromProcess runs Detect against the process environment.
func DetectFromProcess() Environment {
	return Detect(os.LookupEnv, os.Getwd)
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
