// Package token 은 채팅 웹소켓 접속용 단기 티켓(JWT)을 제공한다.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TicketManager 는 웹소켓 티켓의 발급과 검증을 담당한다.
type TicketManager struct {
	secretKey []byte
	ticketDur time.Duration
}

// TicketClaims 는 티켓에 담기는 세션 정보다.
type TicketClaims struct {
	SessionID string `json:"sessionId"`
	jwt.RegisteredClaims
}

// NewTicketManager 는 TicketManager 를 생성한다.
// expireMinutes 는 티켓 유효 시간(분)이다.
func NewTicketManager(secret string, expireMinutes int) *TicketManager {
	return &TicketManager{
		secretKey: []byte(secret),
		ticketDur: time.Duration(expireMinutes) * time.Minute,
	}
}

// IssueTicket 은 세션 ID 를 담은 단기 티켓을 발급한다.
func (m *TicketManager) IssueTicket(sessionID string) (string, error) {
	claims := TicketClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.ticketDur)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.secretKey)
}

// VerifyTicket 은 티켓을 검증하고 세션 클레임을 반환한다.
func (m *TicketManager) VerifyTicket(ticketString string) (*TicketClaims, error) {
	t, err := jwt.ParseWithClaims(ticketString, &TicketClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secretKey, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := t.Claims.(*TicketClaims); ok && t.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid ticket")
}
