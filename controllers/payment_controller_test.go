package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/alvine998/marketplace-backend/services"
)

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) RequestToken(ctx context.Context, userID, orderID uuid.UUID) (*services.PaymentSession, *services.ServiceError) {
	args := m.Called(ctx, userID, orderID)
	var session *services.PaymentSession
	if args.Get(0) != nil {
		session = args.Get(0).(*services.PaymentSession)
	}
	var svcErr *services.ServiceError
	if args.Get(1) != nil {
		svcErr = args.Get(1).(*services.ServiceError)
	}
	return session, svcErr
}

func (m *MockPaymentService) HandleNotification(ctx context.Context, rawPayload []byte) *services.ServiceError {
	args := m.Called(ctx, rawPayload)
	if args.Get(0) != nil {
		return args.Get(0).(*services.ServiceError)
	}
	return nil
}

func (m *MockPaymentService) ListPaymentMethods() []services.PaymentMethod {
	args := m.Called()
	return args.Get(0).([]services.PaymentMethod)
}

func TestHandleNotificationController(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("acknowledged - 200", func(t *testing.T) {
		mockService := new(MockPaymentService)
		controller := NewPaymentController(mockService)

		mockService.On("HandleNotification", mock.Anything, mock.Anything).Return(nil).Once()

		router := gin.New()
		router.POST("/payments/notification", controller.HandleNotification)

		payload := `{"order_id":"` + uuid.NewString() + `","transaction_status":"settlement"}`
		req, _ := http.NewRequest(http.MethodPost, "/payments/notification", bytes.NewBufferString(payload))
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("unknown order - 404 final", func(t *testing.T) {
		mockService := new(MockPaymentService)
		controller := NewPaymentController(mockService)

		mockService.On("HandleNotification", mock.Anything, mock.Anything).
			Return(services.ErrNotFound("Transaction")).Once()

		router := gin.New()
		router.POST("/payments/notification", controller.HandleNotification)

		req, _ := http.NewRequest(http.MethodPost, "/payments/notification", bytes.NewBufferString(`{"order_id":"x"}`))
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("transient failure - 503 retryable", func(t *testing.T) {
		mockService := new(MockPaymentService)
		controller := NewPaymentController(mockService)

		mockService.On("HandleNotification", mock.Anything, mock.Anything).
			Return(&services.ServiceError{StatusCode: http.StatusServiceUnavailable, Message: "Error handling payment notification"}).Once()

		router := gin.New()
		router.POST("/payments/notification", controller.HandleNotification)

		req, _ := http.NewRequest(http.MethodPost, "/payments/notification", bytes.NewBufferString(`{}`))
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
		mockService.AssertExpectations(t)
	})
}

func TestCreateTokenController(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New()
	orderID := uuid.New()

	t.Run("Success - 200 OK", func(t *testing.T) {
		mockService := new(MockPaymentService)
		controller := NewPaymentController(mockService)

		session := &services.PaymentSession{Token: "tok-9", RedirectURL: "https://pay.example/tok-9"}
		mockService.On("RequestToken", mock.Anything, userID, orderID).Return(session, nil).Once()

		router := gin.New()
		router.POST("/payments/token", authAs(userID, "user"), controller.CreateToken)

		payload := `{"order_id":"` + orderID.String() + `"}`
		req, _ := http.NewRequest(http.MethodPost, "/payments/token", bytes.NewBufferString(payload))
		req.Header.Set("Content-Type", "application/json")
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "tok-9")
		mockService.AssertExpectations(t)
	})

	t.Run("Failure - order not found - 404", func(t *testing.T) {
		mockService := new(MockPaymentService)
		controller := NewPaymentController(mockService)

		mockService.On("RequestToken", mock.Anything, userID, orderID).
			Return(nil, services.ErrNotFound("Order")).Once()

		router := gin.New()
		router.POST("/payments/token", authAs(userID, "user"), controller.CreateToken)

		payload := `{"order_id":"` + orderID.String() + `"}`
		req, _ := http.NewRequest(http.MethodPost, "/payments/token", bytes.NewBufferString(payload))
		req.Header.Set("Content-Type", "application/json")
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
		mockService.AssertExpectations(t)
	})
}
