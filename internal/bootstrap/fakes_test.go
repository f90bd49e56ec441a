package bootstrap

// In-memory tool fakes. Each records the calls it receives and returns
// scripted outcomes, so workflow tests run without git, gh, conda, or the
// network.

type fakeGit struct {
	cloned bool

	cloneErrs      []error // consumed one per call; nil slice means success
	cloneCalls     int
	cloneURLs      []string
	fetchCalls     int
	checkoutRefs   []string
	checkoutErr    error
	submoduleCalls int
	submoduleErr   error
	credTokens     []string
	identityCalls  int
}

func (f *fakeGit) IsCloned(string) bool { return f.cloned }

func (f *fakeGit) Clone(url, _ string) error {
	f.cloneCalls++
	f.cloneURLs = append(f.cloneURLs, url)
	if len(f.cloneErrs) > 0 {
		err := f.cloneErrs[0]
		f.cloneErrs = f.cloneErrs[1:]
		return err
	}
	return nil
}

func (f *fakeGit) Fetch(string) error { f.fetchCalls++; return nil }

func (f *fakeGit) Checkout(_, ref string) error {
	f.checkoutRefs = append(f.checkoutRefs, ref)
	return f.checkoutErr
}

func (f *fakeGit) SubmoduleUpdate(string) error {
	f.submoduleCalls++
	return f.submoduleErr
}

func (f *fakeGit) HeadCommit(string) (string, error) { return "abc1234", nil }

func (f *fakeGit) ConfigureCredentials(token string) error {
	f.credTokens = append(f.credTokens, token)
	return nil
}

func (f *fakeGit) EnsureIdentity() error { f.identityCalls++; return nil }

type fakeHost struct {
	installed    bool
	installErr   error
	installCalls int
	authErr      error
	authTokens   []string
	cloneErrs    []error
	cloneCalls   int
}

func (f *fakeHost) Installed() bool { return f.installed }

func (f *fakeHost) Install() error {
	f.installCalls++
	if f.installErr == nil {
		f.installed = true
	}
	return f.installErr
}

func (f *fakeHost) AuthLogin(token string) error {
	f.authTokens = append(f.authTokens, token)
	return f.authErr
}

func (f *fakeHost) Clone(string, string) error {
	f.cloneCalls++
	if len(f.cloneErrs) > 0 {
		err := f.cloneErrs[0]
		f.cloneErrs = f.cloneErrs[1:]
		return err
	}
	return nil
}

type pipCall struct {
	env  string
	dir  string
	args []string
}

type runCall struct {
	env  string
	dir  string
	argv []string
}

type fakeConda struct {
	installed    bool
	installCalls int

	envs            map[string]bool
	created         []string // "name python=version"
	createdFromFile []string // "name file"
	updated         []string // "name file"

	runCalls []runCall
	pipCalls []pipCall

	pythonInfo string
	packages   string
}

func newFakeConda() *fakeConda {
	return &fakeConda{
		installed:  true,
		envs:       map[string]bool{},
		pythonInfo: "3.11.9 /fake/python",
		packages:   "numpy==2.0.0",
	}
}

func (f *fakeConda) Installed() bool { return f.installed }

func (f *fakeConda) Install() error {
	f.installCalls++
	f.installed = true
	return nil
}

func (f *fakeConda) EnvExists(name string) (bool, error) { return f.envs[name], nil }

func (f *fakeConda) CreateEnv(name, version string) error {
	f.created = append(f.created, name+" python="+version)
	f.envs[name] = true
	return nil
}

func (f *fakeConda) CreateEnvFromFile(name, file string) error {
	f.createdFromFile = append(f.createdFromFile, name+" "+file)
	f.envs[name] = true
	return nil
}

func (f *fakeConda) UpdateEnv(name, file string) error {
	f.updated = append(f.updated, name+" "+file)
	return nil
}

func (f *fakeConda) Run(env, dir string, argv []string) error {
	f.runCalls = append(f.runCalls, runCall{env: env, dir: dir, argv: argv})
	return nil
}

func (f *fakeConda) PipInstall(env, dir string, args ...string) error {
	f.pipCalls = append(f.pipCalls, pipCall{env: env, dir: dir, args: args})
	return nil
}

func (f *fakeConda) PythonInfo(string) (string, error) { return f.pythonInfo, nil }

func (f *fakeConda) Packages(string) (string, error) { return f.packages, nil }

type fakeHandoff struct {
	argv []string
	code int
}

func (f *fakeHandoff) call(argv []string) (int, error) {
	f.argv = argv
	return f.code, nil
}
