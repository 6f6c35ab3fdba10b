package tests

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/finquest/finquest/apps/api/echo"
	"github.com/finquest/finquest/core"
	"github.com/finquest/finquest/core/article"
	"github.com/finquest/finquest/core/catalog"
	"github.com/finquest/finquest/core/notification"
	"github.com/finquest/finquest/core/progress"
	"github.com/finquest/finquest/core/reward"
	"github.com/finquest/finquest/core/user"
	emailsvc "github.com/finquest/finquest/services/email"
	logsvc "github.com/finquest/finquest/services/logger"
	inmemdb "github.com/finquest/finquest/storage/database/inmem"
)

var (
	usrRepo          user.Repository
	catalogRepo      catalog.Repository
	progressRepo     progress.ProgressRepository
	profileRepo      progress.ProfileRepository
	rewardRepo       reward.Repository
	articleRepo      article.Repository
	notificationRepo notification.Repository

	progressSvc *progress.Service

	errMissingToken     = httpErr{Error: "missing or malformed jwt"}
	errPermissionDenied = httpErr{Error: "permission denied"}
	errNotFound         = httpErr{Error: "not found"}
)

func setup(t *testing.T) Server {
	core.Conf.Debug = false
	core.Conf.TestMode = true

	// set up DB & repos
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	usrRepo = inmemdb.NewUserRepository(db)
	catalogRepo = inmemdb.NewCatalogRepository(db)
	progressRepo = inmemdb.NewProgressRepository(db)
	profileRepo = inmemdb.NewProfileRepository(db)
	rewardRepo = inmemdb.NewRewardRepository(db)
	articleRepo = inmemdb.NewArticleRepository(db)
	notificationRepo = inmemdb.NewNotificationRepository(db)

	// set up validation
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	translator, _ := uni.GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.RegisterValidators(validate, translator)
	catalog.RegisterValidators(validate, translator)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock()
	catalogSvc := catalog.NewService(catalogRepo)
	progressSvc = progress.NewService(nil, progressRepo, profileRepo, catalogSvc)

	// set up server
	return NewServer(
		&Options{
			DisableReqLogs:  true,
			UserSvc:         user.NewService(usrRepo, mailSvc),
			CatalogSvc:      catalogSvc,
			ProgressSvc:     progressSvc,
			RewardSvc:       reward.NewService(rewardRepo, progressSvc),
			ArticleSvc:      article.NewService(articleRepo),
			NotificationSvc: notification.NewService(notificationRepo),
			Logger:          logsvc.NewStdLogger(log.New(io.Discard, "", 0)),
			Validate:        validate,
			Translator:      translator,
		},
	)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

// nolint
func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
