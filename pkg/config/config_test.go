package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mindfoldco/mindfold/pkg/config"
)

var _ = Describe("Configer", func() {
	var (
		dir   string
		cfger *config.Configer
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()

		var err error
		cfger, err = config.NewConfiger(dir)
		Expect(err).NotTo(HaveOccurred())
	})

	It("targets config.toml in the config directory", func() {
		Expect(cfger.GetTarget()).To(Equal(filepath.Join(dir, "config.toml")))
	})

	Describe("LoadConfig", func() {
		It("returns defaults when no file exists", func() {
			cfg, err := cfger.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Version).To(Equal(config.CurrentV))
			Expect(cfg.Session.Mode).To(Equal(config.ModeLocal))
			Expect(cfg.Server.Listen).To(Equal(":8080"))
			Expect(cfg.Cloud.BaseURL).To(Equal("http://localhost:8080"))
			Expect(cfg.Storage.LocalRoot).NotTo(BeEmpty())
		})

		It("fills unset fields from defaults", func() {
			Expect(os.WriteFile(cfger.GetTarget(), []byte(
				"[cloud]\nbase_url = \"https://sync.mindfold.app\"\n",
			), 0o600)).To(Succeed())

			cfg, err := cfger.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Cloud.BaseURL).To(Equal("https://sync.mindfold.app"))
			Expect(cfg.Session.Mode).To(Equal(config.ModeLocal))
			Expect(cfg.Server.Listen).To(Equal(":8080"))
		})
	})

	Describe("SaveConfig", func() {
		It("rejects a nil config", func() {
			Expect(cfger.SaveConfig(nil)).To(MatchError(ContainSubstring("nil config")))
		})

		It("round-trips through the file", func() {
			cfg := config.NewDefaultConfig()
			cfg.Session.Mode = config.ModeLocalCloud
			cfg.Server.SQLitePath = "sync.db"
			Expect(cfger.SaveConfig(cfg)).To(Succeed())

			loaded, err := cfger.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Session.Mode).To(Equal(config.ModeLocalCloud))
			Expect(loaded.Server.SQLitePath).To(Equal("sync.db"))
		})
	})

	Describe("SetConfigValue and GetConfigValue", func() {
		It("rejects unknown keys", func() {
			Expect(cfger.SetConfigValue("nope", "x")).
				To(MatchError(ContainSubstring("unknown config key")))

			_, err := cfger.GetConfigValue("nope")
			Expect(err).To(MatchError(ContainSubstring("unknown config key")))
		})

		It("sets and gets string keys", func() {
			Expect(cfger.SetConfigValue("cloud.base_url", "https://sync.mindfold.app")).To(Succeed())

			got, err := cfger.GetConfigValue("cloud.base_url")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal("https://sync.mindfold.app"))
		})

		It("parses booleans for storage.watch", func() {
			Expect(cfger.SetConfigValue("storage.watch", "true")).To(Succeed())

			got, err := cfger.GetConfigValue("storage.watch")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal("true"))

			Expect(cfger.SetConfigValue("storage.watch", "maybe")).
				To(MatchError(ContainSubstring("invalid value")))
		})

		It("validates session.mode", func() {
			Expect(cfger.SetConfigValue("session.mode", config.ModeLocalCloud)).To(Succeed())
			Expect(cfger.SetConfigValue("session.mode", "cloud-only")).
				To(MatchError(ContainSubstring("invalid session.mode")))
		})
	})

	Describe("key registry", func() {
		It("lists keys sorted", func() {
			keys := config.ValidConfigKeys()
			Expect(keys).To(ContainElements(
				"cloud.base_url",
				"server.listen",
				"session.mode",
				"storage.local_root",
			))
			for i := 1; i < len(keys); i++ {
				Expect(keys[i-1] < keys[i]).To(BeTrue())
			}
		})

		It("reports key validity", func() {
			Expect(config.IsValidConfigKey("session.mode")).To(BeTrue())
			Expect(config.IsValidConfigKey("session.nope")).To(BeFalse())
		})
	})
})

var _ = Describe("ParseConfigTOML", func() {
	It("parses a populated document", func() {
		cfg, err := config.ParseConfigTOML([]byte(`
version = 0

[storage]
local_root = "/tmp/maps"
watch = true

[session]
mode = "local+cloud"
`))
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Storage.LocalRoot).To(Equal("/tmp/maps"))
		Expect(cfg.Storage.Watch).To(BeTrue())
		Expect(cfg.Session.Mode).To(Equal("local+cloud"))
	})

	It("rejects unsupported versions", func() {
		_, err := config.ParseConfigTOML([]byte("version = 7\n"))
		Expect(err).To(MatchError(ContainSubstring("unsupported config version")))
	})

	It("rejects malformed TOML", func() {
		_, err := config.ParseConfigTOML([]byte("[storage\n"))
		Expect(err).To(MatchError(ContainSubstring("parsing config TOML")))
	})
})

var _ = Describe("InitViper", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("applies defaults with no file present", func() {
		v, err := config.InitViper(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetString("session.mode")).To(Equal(config.ModeLocal))
		Expect(v.GetString("server.listen")).To(Equal(":8080"))
	})

	It("reads values from config.toml", func() {
		Expect(os.WriteFile(filepath.Join(dir, "config.toml"), []byte(
			"[session]\nmode = \"local+cloud\"\n",
		), 0o600)).To(Succeed())

		v, err := config.InitViper(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetString("session.mode")).To(Equal(config.ModeLocalCloud))
	})

	It("lets the environment override the file", func() {
		Expect(os.WriteFile(filepath.Join(dir, "config.toml"), []byte(
			"[cloud]\nbase_url = \"http://file.example\"\n",
		), 0o600)).To(Succeed())

		GinkgoT().Setenv("MINDFOLD_CLOUD_BASE_URL", "http://env.example")

		v, err := config.InitViper(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetString("cloud.base_url")).To(Equal("http://env.example"))
	})
})
