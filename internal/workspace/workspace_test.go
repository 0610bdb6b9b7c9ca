package workspace

import (
	"path/filepath"
	"testing"

	"github.com/ben-ranford/d7audit/internal/testutil"
)

const settingsFixture = `<?php
/**
 * Example:
 *   $databases['default']['default'] = array(
 *     'database' => 'databasename',
 *     'username' => 'username',
 *   );
 */
// 'database' => 'commented',
$databases = array (
  'default' =>
  array (
    'default' =>
    array (
      'database' => 'drupal7',
      'username' => "site_user",
      'password' => 'p@ss',
      'host' => 'mariadb',
      'port' => 3307,
      'driver' => 'mysql',
      'prefix' => '',
    ),
  ),
);
$databases['legacy']['default'] = array('database' => 'old');
`

func TestNormalizeDocroot(t *testing.T) {
	got, err := NormalizeDocroot("")
	if err != nil {
		t.Fatalf("normalize empty path: %v", err)
	}
	want, err := filepath.Abs(".")
	if err != nil {
		t.Fatalf("abs dot: %v", err)
	}
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	got, err = NormalizeDocroot("/var/www/html/")
	if err != nil || got != "/var/www/html" {
		t.Fatalf("expected cleaned docroot, got %q, %v", got, err)
	}
}

func TestLayoutPaths(t *testing.T) {
	layout := NewLayout("/srv/site")
	cases := map[string]string{
		layout.ContribModules(): "/srv/site/sites/all/modules",
		layout.CustomModules():  "/srv/site/sites/all/modules/custom",
		layout.CustomThemes():   "/srv/site/sites/all/themes",
		layout.CoreThemes():     "/srv/site/themes",
		layout.Settings():       "/srv/site/sites/default/settings.php",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
}

func TestContribModuleDescriptorsMatchOneLevel(t *testing.T) {
	docroot := t.TempDir()
	testutil.WriteTree(t, docroot, map[string]string{
		"sites/all/modules/views/views.info":            "name = Views\n",
		"sites/all/modules/views/modules/views_ui.info": "name = Views UI\n",
		"sites/all/modules/ctools/ctools.info":          "name = Chaos tools\n",
		"sites/all/modules/custom/alpha/alpha.info":     "name = Alpha\n",
		"sites/all/modules/README.txt":                  "readme\n",
		"sites/all/modules/token/token.module":          "<?php\n",
	})

	got := NewLayout(docroot).ContribModuleDescriptors()
	want := []string{
		filepath.Join(docroot, "sites/all/modules/ctools/ctools.info"),
		filepath.Join(docroot, "sites/all/modules/views/views.info"),
	}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	empty := NewLayout(filepath.Join(docroot, "missing")).ContribModuleDescriptors()
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil descriptors, got %#v", empty)
	}
}

func TestLooksLikeDrupal7(t *testing.T) {
	docroot := t.TempDir()
	testutil.WriteTree(t, docroot, map[string]string{
		"includes/bootstrap.inc":     "<?php\n",
		"modules/system/system.info": "name = System\ncore = 7.x\n",
	})
	if !NewLayout(docroot).LooksLikeDrupal7() {
		t.Fatalf("expected drupal 7 docroot")
	}

	d8 := t.TempDir()
	testutil.WriteTree(t, d8, map[string]string{
		"includes/bootstrap.inc":     "<?php\n",
		"modules/system/system.info": "name = System\ncore = 8.x\n",
	})
	if NewLayout(d8).LooksLikeDrupal7() {
		t.Fatalf("expected core 8.x to be rejected")
	}

	if NewLayout(t.TempDir()).LooksLikeDrupal7() {
		t.Fatalf("expected empty directory to be rejected")
	}
}

func TestParseSettingsSkipsComments(t *testing.T) {
	settings, ok := ParseSettings(settingsFixture)
	if !ok {
		t.Fatalf("expected settings to be found")
	}
	want := Settings{Driver: "mysql", Host: "mariadb", Port: 3307, Name: "drupal7", User: "site_user", Password: "p@ss"}
	if settings != want {
		t.Fatalf("expected %+v, got %+v", want, settings)
	}
}

func TestParseSettingsWithoutDatabases(t *testing.T) {
	if _, ok := ParseSettings("<?php\n$conf['site_name'] = 'x';\n"); ok {
		t.Fatalf("expected no settings")
	}
	if _, ok := ParseSettings("<?php\n$databases = array();\n"); ok {
		t.Fatalf("expected empty databases to be ignored")
	}
}

func TestReadSettingsFromDocroot(t *testing.T) {
	docroot := t.TempDir()
	testutil.WriteTree(t, docroot, map[string]string{"sites/default/settings.php": settingsFixture})

	settings, ok := ReadSettings(NewLayout(docroot))
	if !ok || settings.Name != "drupal7" {
		t.Fatalf("expected settings from docroot, got %+v, %v", settings, ok)
	}
	if _, ok := ReadSettings(NewLayout(t.TempDir())); ok {
		t.Fatalf("expected missing settings.php to report not found")
	}
}
