package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"zappy/internal/shared/security"
	"zappy/internal/shared/utils"
	"zappy/modules/kit/logx"
)

const (
	outQueueSize = 256
	writeWait    = 10 * time.Second
	keySize      = 16
)

var errNoSecretKey = errors.New("ws secret key not negotiated")

// WsServer 是单条 websocket 连接：一个读 goroutine 分发请求，一个写 goroutine 串行输出。
// needSecret=true 时帧格式为 zlib(AES-CBC(json))，并在建连时下发握手密钥；否则为明文 json 文本帧。
type WsServer struct {
	id         int64
	conn       *websocket.Conn
	router     *Router
	needSecret bool
	outChan    chan *WsMsgResp
	property   map[string]any
	sync.RWMutex
	writeMu   sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
	log       logx.Logger
}

func NewWsServer(wsConn *websocket.Conn, router *Router, needSecret bool, l logx.Logger) *WsServer {
	if l == nil {
		l = logx.Nop()
	}
	id := utils.NextSnowflakeID()
	return &WsServer{
		id:         id,
		conn:       wsConn,
		router:     router,
		needSecret: needSecret,
		outChan:    make(chan *WsMsgResp, outQueueSize),
		property:   make(map[string]any),
		done:       make(chan struct{}),
		log:        l.With(zap.Int64("conn_id", id)),
	}
}

func (s *WsServer) ID() int64 {
	return s.id
}

func (s *WsServer) SetProperty(key string, value any) {
	s.Lock()
	defer s.Unlock()
	s.property[key] = value
}

func (s *WsServer) GetProperty(key string) any {
	s.RLock()
	defer s.RUnlock()
	return s.property[key]
}

func (s *WsServer) RemoveProperty(key string) {
	s.Lock()
	defer s.Unlock()
	delete(s.property, key)
}

func (s *WsServer) Addr() string {
	return s.conn.RemoteAddr().String()
}

// Push 主动推送；连接已关闭或发送队列已满时丢弃并返回 false。
func (s *WsServer) Push(name string, data any) bool {
	return s.enqueue(&WsMsgResp{Body: &RespBody{Name: name, Msg: data}})
}

func (s *WsServer) enqueue(msg *WsMsgResp) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.outChan <- msg:
		return true
	case <-s.done:
		return false
	default:
		s.log.Warn("ws_server out queue full, drop msg", zap.String("name", msg.Body.Name))
		return false
	}
}

// Run 启动读写循环；needSecret 时先下发握手密钥。
func (s *WsServer) Run() {
	if s.needSecret {
		s.handshake()
	}
	go s.readMsgLoop()
	go s.writeMsgLoop()
}

func (s *WsServer) readMsgLoop() {
	defer func() {
		if err := recover(); err != nil {
			s.log.Error("ws readMsgLoop panic", zap.String("err", fmt.Sprint(err)))
		}
		s.Close()
	}()
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn("ws_server read msg", zap.Error(err))
			}
			return
		}

		reqBody, err := s.decode(data)
		if errors.Is(err, errNoSecretKey) {
			s.handshake()
			continue
		}
		if err != nil {
			s.log.Warn("ws_server decode msg", zap.Error(err))
			continue
		}

		req := WsMsgReq{Body: reqBody, Conn: s}
		// req 和 resp 的 Seq 必须一致
		resp := WsMsgResp{Body: &RespBody{Seq: reqBody.Seq, Name: reqBody.Name}}
		if reqBody.Name == HeartbeatMsg {
			h := &Heartbeat{}
			_ = mapstructure.Decode(reqBody.Msg, h)
			h.STime = time.Now().UnixMilli()
			resp.Body.Msg = h
		} else {
			s.log.Debug("ws_server read msg", zap.String("name", reqBody.Name), zap.Int64("seq", reqBody.Seq))
			s.router.Dispatch(context.Background(), &req, &resp)
		}
		s.enqueue(&resp)
	}
}

// decode 依次解压、解密、反序列化。
func (s *WsServer) decode(data []byte) (*ReqBody, error) {
	payload := data
	if s.needSecret {
		secretData, err := security.UnZip(data)
		if err != nil {
			return nil, fmt.Errorf("unzip: %w", err)
		}
		key, _ := s.GetProperty(SecretKey).(string)
		if key == "" {
			return nil, errNoSecretKey
		}
		payload, err = security.AesCBCDecrypt(secretData, []byte(key), []byte(key), security.WsPadding)
		if err != nil {
			return nil, errNoSecretKey
		}
	}
	reqBody := &ReqBody{}
	if err := json.Unmarshal(payload, reqBody); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	return reqBody, nil
}

func (s *WsServer) writeMsgLoop() {
	for {
		select {
		case msg := <-s.outChan:
			if err := s.write(msg); err != nil {
				s.log.Warn("ws_server write msg", zap.String("name", msg.Body.Name), zap.Error(err))
			}
		case <-s.done:
			return
		}
	}
}

func (s *WsServer) Close() {
	s.closeOnce.Do(func() {
		_ = s.conn.Close()
		close(s.done)
	})
}

func (s *WsServer) Done() <-chan struct{} {
	return s.done
}

func (s *WsServer) write(msg *WsMsgResp) error {
	data, err := json.Marshal(msg.Body)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if !s.needSecret {
		return s.writeFrame(websocket.TextMessage, data)
	}

	key, _ := s.GetProperty(SecretKey).(string)
	if key == "" {
		return errNoSecretKey
	}
	encrypted, err := security.AesCBCEncrypt(data, []byte(key), []byte(key), security.WsPadding)
	if err != nil {
		return fmt.Errorf("encrypt: %w", err)
	}
	zipped, err := security.Zip(encrypted)
	if err != nil {
		return fmt.Errorf("zip: %w", err)
	}
	// 压缩后的密文是二进制字节流，必须走 BinaryMessage
	return s.writeFrame(websocket.BinaryMessage, zipped)
}

// writeFrame 串行化写入：握手可能在读 goroutine 上发生。
func (s *WsServer) writeFrame(messageType int, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(messageType, data)
}

// handshake 下发会话密钥；握手帧只压缩不加密。
func (s *WsServer) handshake() {
	key, _ := s.GetProperty(SecretKey).(string)
	if key == "" {
		key = utils.RandSeq(keySize)
		s.SetProperty(SecretKey, key)
	}

	data, err := json.Marshal(&RespBody{Name: HandshakeMsg, Msg: &Handshake{Key: key}})
	if err != nil {
		s.log.Error("ws_server handshake marshal", zap.Error(err))
		return
	}
	zipped, err := security.Zip(data)
	if err != nil {
		s.log.Error("ws_server handshake zip", zap.Error(err))
		return
	}
	if err := s.writeFrame(websocket.BinaryMessage, zipped); err != nil {
		s.log.Warn("ws_server handshake write", zap.Error(err))
	}
}
